package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFields(t *testing.T) {
	f := Fields()
	assert.Len(t, f, 13)
	assert.Equal(t, FieldYachtModel, f[0])
	assert.Equal(t, FieldOther, f[len(f)-1])

	f[0] = "mutated"
	assert.Equal(t, FieldYachtModel, Fields()[0])

	assert.True(t, IsField("Owner's Name"))
	assert.False(t, IsField("owner's name"))
}

func TestExtensions(t *testing.T) {
	assert.Equal(t, "pdf", NormalizeExt(" .PDF"))
	assert.Equal(t, PDF, MapExtToFormat(".pdf"))
	assert.Equal(t, IMAGE, MapExtToFormat("JPEG"))
	assert.Equal(t, HTML, MapExtToFormat("htm"))
	assert.Empty(t, MapExtToFormat("docx"))

	assert.True(t, IsInquiryExt(".eml"))
	assert.True(t, IsInquiryExt("TXT"))
	assert.False(t, IsInquiryExt("pdf"))
}
