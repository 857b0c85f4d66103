package ses

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"esfhub/internal/domain"
)

func TestBuildFailureHTML_EscapesUpstreamText(t *testing.T) {
	doc := &domain.ESFDocument{DocumentUUID: uuid.New(), LegalPersonTIN: "0100<b>"}

	body := buildFailureHTML(doc, `gns submit: upstream returned 422: <script>alert("x")</script>`)

	assert.NotContains(t, body, "<script>")
	assert.Contains(t, body, "&lt;script&gt;alert(&#34;x&#34;)&lt;/script&gt;")
	assert.Contains(t, body, "0100&lt;b&gt;")
	assert.Contains(t, body, doc.DocumentUUID.String())
}
