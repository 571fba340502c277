package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeNeverNullData(t *testing.T) {
	b, err := json.Marshal(Error(CodeNotFound, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":404,"msg":"Not Found","data":{}}`, string(b))

	b, err = json.Marshal(OK(nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"code":0,"msg":"OK","data":{}}`, string(b))
}

func TestErrorWithDetail(t *testing.T) {
	r := ErrorWith(CodeBadRequest, "invalid job", map[string]string{"title": "title is required"})
	assert.Equal(t, "invalid job", r.Msg)
	assert.Equal(t, map[string]string{"title": "title is required"}, r.Data)
}
