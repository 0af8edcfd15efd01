package crmerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestServerDefaultsMessage(t *testing.T) {
	err := Server("contacts.get", http.StatusInternalServerError, "")
	assert.Equal(t, MsgServerDefault, err.Error())
	assert.Equal(t, KindServer, KindOf(err))
}

func TestKindSurvivesWrapping(t *testing.T) {
	base := Network("opportunities.list", errors.New("dial tcp: refused"))
	wrapped := fmt.Errorf("refresh: %w", base)

	assert.True(t, Is(wrapped, KindNetwork))
	assert.Equal(t, MsgNetwork, Message(wrapped, "fallback"))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("accounts.get", "account not found")))
	assert.True(t, IsNotFound(Server("contacts.get", http.StatusNotFound, "Contact not found")))
	assert.False(t, IsNotFound(Server("contacts.get", http.StatusBadRequest, "bad")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestMessageFallbacks(t *testing.T) {
	assert.Equal(t, "", Message(nil, "unused"))
	assert.Equal(t, "boom", Message(errors.New("boom"), "fallback"))
	assert.Equal(t, "fallback", Message(errors.New(""), "fallback"))
}
