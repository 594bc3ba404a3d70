package order

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Jaybeey1507/cartify-group3/internal/settlement"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		kind settlement.Kind
		want int
	}{
		{settlement.KindNotFound, http.StatusNotFound},
		{settlement.KindValidation, http.StatusBadRequest},
		{settlement.KindInsufficientFunds, http.StatusBadRequest},
		{settlement.KindInsufficientStock, http.StatusBadRequest},
		{settlement.KindUnauthorized, http.StatusForbidden},
		{settlement.KindConflict, http.StatusConflict},
		{settlement.KindUnsupported, http.StatusNotImplemented},
	}
	for _, tc := range cases {
		err := &settlement.Error{Kind: tc.kind, Msg: "x"}
		assert.Equal(t, tc.want, httpStatus(err), "kind %v", tc.kind)
	}
}

func TestHTTPStatusUnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, httpStatus(errors.New("boom")))
}
