package judge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bothsides-platform-dev/both-sides-sub000/internal/domain"
)

func TestParseVerdict(t *testing.T) {
	t.Run("plain object", func(t *testing.T) {
		v, err := parseVerdict(`{"validity":"invalid","counters_index":null,"explanation":"Off topic.","penalty_reason":"argues about pasta"}`)
		require.NoError(t, err)
		assert.Equal(t, domain.ValidityInvalid, v.Validity)
		assert.Nil(t, v.CountersIndex)
		assert.Equal(t, "Off topic.", v.Explanation)
		require.NotNil(t, v.PenaltyReason)
		assert.Equal(t, "argues about pasta", *v.PenaltyReason)
	})

	t.Run("wrapped in prose and fences", func(t *testing.T) {
		v, err := parseVerdict("Here is my ruling:\n```json\n{\"validity\": \"Valid\", \"counters_index\": 2, \"explanation\": \"Direct rebuttal.\"}\n```")
		require.NoError(t, err)
		assert.Equal(t, domain.ValidityValid, v.Validity)
		require.NotNil(t, v.CountersIndex)
		assert.Equal(t, 2, *v.CountersIndex)
		assert.Nil(t, v.PenaltyReason)
	})

	t.Run("blank penalty reason dropped", func(t *testing.T) {
		v, err := parseVerdict(`{"validity":"ambiguous","explanation":"unclear","penalty_reason":"  "}`)
		require.NoError(t, err)
		assert.Equal(t, domain.ValidityAmbiguous, v.Validity)
		assert.Nil(t, v.PenaltyReason)
	})

	t.Run("no json", func(t *testing.T) {
		_, err := parseVerdict("I think it is valid.")
		require.Error(t, err)
		assert.Contains(t, err.Error(), ErrMsgNoJSONObject)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := parseVerdict(`{"validity": valid}`)
		assert.Error(t, err)
	})

	t.Run("unknown validity", func(t *testing.T) {
		_, err := parseVerdict(`{"validity":"partially valid"}`)
		require.Error(t, err)
		assert.ErrorIs(t, err, errUnknownValidity)
	})
}
