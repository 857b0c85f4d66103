package service_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"esfhub/internal/domain"
	"esfhub/internal/port"
)

// memDB is an in-memory stand-in for the invoice and reference tables.
type memDB struct {
	mu       sync.Mutex
	refs     map[domain.RefKind][]domain.Reference
	invoices []domain.Invoice
	nextID   int64

	// failUpsert, when set, is consulted before every invoice upsert.
	failUpsert func(inv *domain.Invoice) error
}

func newMemDB() *memDB {
	return &memDB{refs: make(map[domain.RefKind][]domain.Reference)}
}

func (db *memDB) snapshot() (map[domain.RefKind][]domain.Reference, []domain.Invoice, int64) {
	refs := make(map[domain.RefKind][]domain.Reference, len(db.refs))
	for k, v := range db.refs {
		refs[k] = append([]domain.Reference(nil), v...)
	}
	return refs, append([]domain.Invoice(nil), db.invoices...), db.nextID
}

func (db *memDB) refCount(kind domain.RefKind) int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.refs[kind])
}

func (db *memDB) totalRefs() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	n := 0
	for _, v := range db.refs {
		n += len(v)
	}
	return n
}

func (db *memDB) invoiceCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.invoices)
}

func (db *memDB) id() int64 {
	db.nextID++
	return db.nextID
}

type memRefRepo struct{ db *memDB }

func (r *memRefRepo) GetOrCreate(_ context.Context, ref *domain.Reference) (*domain.Reference, bool, error) {
	if _, err := domain.LookupRefKind(ref.Kind); err != nil {
		return nil, false, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.refs[ref.Kind] {
		if existing.Key == ref.Key {
			rec := existing
			return &rec, false, nil
		}
	}
	rec := *ref
	rec.ID = r.db.id()
	rec.CreatedAt = time.Now().UTC()
	r.db.refs[ref.Kind] = append(r.db.refs[ref.Kind], rec)
	return &rec, true, nil
}

func (r *memRefRepo) GetByID(_ context.Context, kind domain.RefKind, id int64) (*domain.Reference, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.refs[kind] {
		if existing.ID == id {
			rec := existing
			return &rec, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *memRefRepo) List(_ context.Context, kind domain.RefKind, offset, limit int) ([]domain.Reference, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := append([]domain.Reference(nil), r.db.refs[kind]...)
	sort.Slice(all, func(i, j int) bool { return all[i].Key < all[j].Key })
	return page(all, offset, limit), len(all), nil
}

type memInvoiceRepo struct{ db *memDB }

func (r *memInvoiceRepo) Create(_ context.Context, inv *domain.Invoice) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.indexOf(inv.DocumentUUID) >= 0 {
		return domain.ErrDuplicateInvoice
	}
	r.insert(inv)
	return nil
}

func (r *memInvoiceRepo) Upsert(_ context.Context, inv *domain.Invoice) (bool, error) {
	if r.db.failUpsert != nil {
		if err := r.db.failUpsert(inv); err != nil {
			return false, err
		}
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if i := r.indexOf(inv.DocumentUUID); i >= 0 {
		inv.ID = r.db.invoices[i].ID
		inv.CreatedAt = r.db.invoices[i].CreatedAt
		inv.UpdatedAt = time.Now().UTC()
		r.db.invoices[i] = *inv
		return false, nil
	}
	r.insert(inv)
	return true, nil
}

func (r *memInvoiceRepo) GetByID(_ context.Context, id int64) (*domain.Invoice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, inv := range r.db.invoices {
		if inv.ID == id {
			out := inv
			return &out, nil
		}
	}
	return nil, domain.ErrInvoiceNotFound
}

func (r *memInvoiceRepo) GetByDocumentUUID(_ context.Context, documentUUID uuid.UUID) (*domain.Invoice, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if i := r.indexOf(documentUUID); i >= 0 {
		out := r.db.invoices[i]
		return &out, nil
	}
	return nil, domain.ErrInvoiceNotFound
}

func (r *memInvoiceRepo) List(_ context.Context, offset, limit int) ([]domain.Invoice, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := append([]domain.Invoice(nil), r.db.invoices...)
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	return page(all, offset, limit), len(all), nil
}

func (r *memInvoiceRepo) Update(_ context.Context, inv *domain.Invoice) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.invoices {
		if r.db.invoices[i].ID == inv.ID {
			inv.UpdatedAt = time.Now().UTC()
			r.db.invoices[i] = *inv
			return nil
		}
	}
	return domain.ErrInvoiceNotFound
}

func (r *memInvoiceRepo) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.invoices {
		if r.db.invoices[i].ID == id {
			r.db.invoices = append(r.db.invoices[:i], r.db.invoices[i+1:]...)
			return nil
		}
	}
	return domain.ErrInvoiceNotFound
}

func (r *memInvoiceRepo) indexOf(documentUUID uuid.UUID) int {
	for i := range r.db.invoices {
		if r.db.invoices[i].DocumentUUID == documentUUID {
			return i
		}
	}
	return -1
}

func (r *memInvoiceRepo) insert(inv *domain.Invoice) {
	now := time.Now().UTC()
	inv.ID = r.db.id()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	r.db.invoices = append(r.db.invoices, *inv)
}

// memUnitOfWork restores the snapshot taken before fn when fn fails.
type memUnitOfWork struct{ db *memDB }

func (u *memUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, stores port.SyncStores) error) error {
	u.db.mu.Lock()
	refs, invoices, nextID := u.db.snapshot()
	u.db.mu.Unlock()

	err := fn(ctx, port.SyncStores{
		References: &memRefRepo{db: u.db},
		Invoices:   &memInvoiceRepo{db: u.db},
	})
	if err != nil {
		u.db.mu.Lock()
		u.db.refs, u.db.invoices, u.db.nextID = refs, invoices, nextID
		u.db.mu.Unlock()
	}
	return err
}

func page[T any](all []T, offset, limit int) []T {
	if offset >= len(all) {
		return []T{}
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end]
}

// memESFRepo serializes SettleDraft with one lock, like a row lock held
// until commit.
type memESFRepo struct {
	mu   sync.Mutex
	docs map[uuid.UUID]domain.ESFDocument
}

func newMemESFRepo() *memESFRepo {
	return &memESFRepo{docs: make(map[uuid.UUID]domain.ESFDocument)}
}

func (r *memESFRepo) put(doc *domain.ESFDocument) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[doc.ID] = *doc
}

func (r *memESFRepo) get(id uuid.UUID) domain.ESFDocument {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.docs[id]
}

func (r *memESFRepo) Create(_ context.Context, doc *domain.ESFDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.docs {
		if d.DocumentUUID == doc.DocumentUUID {
			return domain.ErrDuplicateDocument
		}
	}
	doc.ID = uuid.New()
	r.docs[doc.ID] = *doc
	return nil
}

func (r *memESFRepo) GetByID(_ context.Context, ownerID, id uuid.UUID) (*domain.ESFDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.OwnerID != ownerID {
		return nil, domain.ErrDocumentNotFound
	}
	return &d, nil
}

func (r *memESFRepo) ListByOwner(_ context.Context, ownerID uuid.UUID, offset, limit int) ([]domain.ESFDocument, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []domain.ESFDocument
	for _, d := range r.docs {
		if d.OwnerID == ownerID {
			all = append(all, d)
		}
	}
	return page(all, offset, limit), len(all), nil
}

func (r *memESFRepo) SettleDraft(ctx context.Context, ownerID, id uuid.UUID, fn func(ctx context.Context, doc *domain.ESFDocument) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.docs[id]
	if !ok || stored.OwnerID != ownerID {
		return domain.ErrDocumentNotFound
	}
	doc := stored
	if err := fn(ctx, &doc); err != nil {
		return err
	}
	if stored.Status != domain.ESFStatusDraft {
		return domain.ErrDocumentNotDraft
	}
	r.docs[id] = doc
	return nil
}
