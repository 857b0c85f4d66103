// Package gnsmock is an in-memory stand-in for the GNS gateway used in local
// development and tests.
package gnsmock

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"esfhub/internal/middleware"
)

const receivePath = "/gns/receive"

// Kinds of stored submissions. ESF documents carry a versioned payload
// envelope; everything else is treated as an invoice record.
const (
	KindInvoice = "invoice"
	KindESF     = "esf"
)

// Document is one submission accepted by the mock.
type Document struct {
	GNSID          string                 `json:"gns_id"`
	Kind           string                 `json:"kind"`
	DocumentUUID   string                 `json:"document_uuid"`
	LegalPersonTIN string                 `json:"legal_person_tin"`
	Data           map[string]interface{} `json:"data"`
	ReceivedAt     time.Time              `json:"received_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type receiveRequest struct {
	DocumentUUID   string                 `json:"document_uuid" binding:"required"`
	LegalPersonTIN *string                `json:"legal_person_tin" binding:"required"`
	Data           map[string]interface{} `json:"data" binding:"required"`
}

// Store keeps received documents keyed by their GNS id.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{docs: make(map[string]*Document)}
}

func (s *Store) add(doc *Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.GNSID] = doc
}

func (s *Store) list(kind string) []*Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Document, 0, len(s.docs))
	for _, d := range s.docs {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReceivedAt.Before(out[j].ReceivedAt) })
	return out
}

func (s *Store) update(id string, data map[string]interface{}) (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, false
	}
	doc.Data = data
	doc.Kind = kindOf(data)
	doc.UpdatedAt = time.Now().UTC()
	return doc, true
}

func (s *Store) delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return false
	}
	delete(s.docs, id)
	return true
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// NewRouter builds the mock gateway's HTTP surface over store.
func NewRouter(store *Store) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	h := &handler{store: store}
	r.POST(receivePath, h.receive)
	r.GET(receivePath, h.list)
	r.PUT(receivePath+"/:id", h.update)
	r.DELETE(receivePath+"/:id", h.remove)
	return r
}

type handler struct {
	store *Store
}

func (h *handler) receive(c *gin.Context) {
	var req receiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(*req.LegalPersonTIN) == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "bad tin"})
		return
	}

	now := time.Now().UTC()
	doc := &Document{
		GNSID:          uuid.New().String(),
		Kind:           kindOf(req.Data),
		DocumentUUID:   req.DocumentUUID,
		LegalPersonTIN: *req.LegalPersonTIN,
		Data:           req.Data,
		ReceivedAt:     now,
		UpdatedAt:      now,
	}
	h.store.add(doc)

	log.Info().Str("gns_id", doc.GNSID).Str("kind", doc.Kind).Str("document_uuid", doc.DocumentUUID).Msg("gnsmock: document accepted")
	c.JSON(http.StatusOK, gin.H{"status": "accepted", "gns_id": doc.GNSID})
}

// list returns the stored bodies of one kind under "content", stamping the
// document uuid onto bodies that lack one. Invoice records are listed unless
// ?kind=esf is given.
func (h *handler) list(c *gin.Context) {
	kind := c.DefaultQuery("kind", KindInvoice)
	if kind != KindInvoice && kind != KindESF {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown kind"})
		return
	}
	docs := h.store.list(kind)
	content := make([]map[string]interface{}, 0, len(docs))
	for _, d := range docs {
		item := make(map[string]interface{}, len(d.Data)+1)
		for k, v := range d.Data {
			item[k] = v
		}
		if _, ok := item["documentUuid"]; !ok {
			item["documentUuid"] = d.DocumentUUID
		}
		content = append(content, item)
	}
	c.JSON(http.StatusOK, gin.H{
		"exchangeCode": c.Query("exchangeCode"),
		"content":      content,
	})
}

func kindOf(data map[string]interface{}) string {
	_, hasSchema := data["schema_version"]
	_, hasInvoice := data["invoice"]
	if hasSchema && hasInvoice {
		return KindESF
	}
	return KindInvoice
}

func (h *handler) update(c *gin.Context) {
	var data map[string]interface{}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, ok := h.store.update(c.Param("id"), data)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated", "gns_id": doc.GNSID})
}

func (h *handler) remove(c *gin.Context) {
	if !h.store.delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "gns_id": c.Param("id")})
}
