package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogapi/internal/jsonapi"
	"github.com/hitoshi/blogapi/internal/model"
)

// handleServiceError はドメインエラーをHTTPステータスとJSON:API
// エラーエンベロープにマッピングする。
//
//	ValidationErrors        → 422（フィールドごとに1エントリ）
//	ErrAuthenticationFailed → 401（固定ペイロード）
//	ErrAccessDenied         → 403（固定ペイロード）
//	ErrNotFound             → 404
//	それ以外                 → 500（詳細はログのみ）
func handleServiceError(w http.ResponseWriter, err error) {
	if verr, ok := model.AsValidationErrors(err); ok {
		objs := make([]jsonapi.ErrorObject, len(verr))
		for i, fe := range verr {
			objs[i] = jsonapi.InvalidAttribute(fe.Field, fe.Message)
		}
		jsonapi.WriteErrors(w, http.StatusUnprocessableEntity, objs...)
		return
	}

	switch {
	case errors.Is(err, model.ErrAuthenticationFailed):
		jsonapi.WriteErrors(w, http.StatusUnauthorized, jsonapi.AuthorizationFailed())
	case errors.Is(err, model.ErrAccessDenied):
		jsonapi.WriteErrors(w, http.StatusForbidden, jsonapi.AccessDenied())
	case errors.Is(err, model.ErrNotFound):
		jsonapi.WriteErrors(w, http.StatusNotFound, jsonapi.NotFound())
	default:
		slog.Error("unhandled service error", slog.String("error", err.Error()))
		jsonapi.WriteErrors(w, http.StatusInternalServerError, jsonapi.InternalServerError())
	}
}
