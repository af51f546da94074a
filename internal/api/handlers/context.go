package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	apiContext "hookfan/internal/api/context"
	"hookfan/internal/platform/auth"
)

func claimsFrom(r *http.Request) *auth.Claims {
	claims, _ := r.Context().Value(apiContext.Claims).(*auth.Claims)
	return claims
}

func paramFrom(r *http.Request, name string) string {
	params, _ := r.Context().Value(apiContext.Params).(httprouter.Params)
	return params.ByName(name)
}
