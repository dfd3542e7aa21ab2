package apikey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/paramountdax-exchange/affiliate_api/model"
)

func TestCacheLifecycle(t *testing.T) {
	SetAll(map[string]*model.APIKey{})

	key := &model.APIKey{AffiliateID: 7, Prefix: "abcdefg", Hash: model.HashString("abcdefg.secret")}
	Set(key.Prefix, key)

	got, _, found, isDecoded := Get("abcdefg")
	require.True(t, found)
	assert.False(t, isDecoded)
	assert.Equal(t, uint64(7), got.AffiliateID)

	assert.True(t, SetDecoded("abcdefg", "abcdefg.secret"))
	_, decoded, _, isDecoded := Get("abcdefg")
	assert.True(t, isDecoded)
	assert.Equal(t, "abcdefg.secret", decoded)

	// decoding is only kept for the current generation of keys
	assert.False(t, SetDecoded("missing", "missing.secret"))

	Set(key.Prefix, key)
	_, _, _, isDecoded = Get("abcdefg")
	assert.False(t, isDecoded)

	Remove("abcdefg")
	_, _, found, _ = Get("abcdefg")
	assert.False(t, found)
}

func TestSetAllReplacesKeys(t *testing.T) {
	SetAll(map[string]*model.APIKey{"old0000": {AffiliateID: 1}})
	SetDecoded("old0000", "old0000.x")

	SetAll(map[string]*model.APIKey{"new0000": {AffiliateID: 2}, "new0001": {AffiliateID: 3}})

	_, _, found, _ := Get("old0000")
	assert.False(t, found)
	assert.Equal(t, 2, Len())
}
