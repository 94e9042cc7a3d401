// Package jsonapi はJSON:API形式のレスポンス生成を提供する。
//
// データドキュメントは {data: {type, id, attributes, relationships}, included}、
// エラーは {errors: [{status, source: {pointer}, title, detail}]} の
// 統一エンベロープで表現する。成功・失敗を問わず全エンドポイントが
// この形式でレスポンスを書き込む。
package jsonapi

import (
	"encoding/json"
	"net/http"
)

// ResourceIdentifier はリソースへの参照（type + id）を表す。
type ResourceIdentifier struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Relationship は単一リソースへのリレーションシップを表す。
type Relationship struct {
	Data ResourceIdentifier `json:"data"`
}

// Resource はJSON:APIのリソースオブジェクトを表す。
type Resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    map[string]any          `json:"attributes,omitempty"`
	Relationships map[string]Relationship `json:"relationships,omitempty"`
}

// Document はJSON:APIのトップレベルドキュメントを表す。
// Dataには単一のResourceまたは[]Resourceを設定する。
type Document struct {
	Data     any        `json:"data"`
	Included []Resource `json:"included,omitempty"`
}

// ErrorSource はエラーの発生箇所を表す。
// フィールド単位のエラーは "/data/attributes/<field>"、
// 認証・認可レベルのエラーは "/code" を指す。
type ErrorSource struct {
	Pointer string `json:"pointer"`
}

// ErrorObject は統一エラーペイロードを表す。
// バリデーションエラーも認証エラーも同じ4フィールドで表現する。
type ErrorObject struct {
	Status string      `json:"status"`
	Source ErrorSource `json:"source"`
	Title  string      `json:"title"`
	Detail string      `json:"detail"`
}

// ErrorDocument はエラーレスポンスのトップレベルドキュメントを表す。
type ErrorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// WriteDocument はデータドキュメントを書き込む。
func WriteDocument(w http.ResponseWriter, statusCode int, doc Document) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(doc)
}

// WriteErrors はエラーエンベロープを書き込む。
func WriteErrors(w http.ResponseWriter, statusCode int, errs ...ErrorObject) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorDocument{Errors: errs})
}

// AuthorizationFailed は401用の固定エラーペイロードを返す。
// どの段階で認証が失敗したかは区別しない。
func AuthorizationFailed() ErrorObject {
	return ErrorObject{
		Status: "401",
		Source: ErrorSource{Pointer: "/code"},
		Title:  "Authorization failed",
		Detail: "The code parameter or authorization header is invalid",
	}
}

// AccessDenied は403用の固定エラーペイロードを返す。
func AccessDenied() ErrorObject {
	return ErrorObject{
		Status: "403",
		Source: ErrorSource{Pointer: "/code"},
		Title:  "Access denied",
		Detail: "You have no rights to access this resource",
	}
}

// NotFound は404用の固定エラーペイロードを返す。
func NotFound() ErrorObject {
	return ErrorObject{
		Status: "404",
		Source: ErrorSource{Pointer: "/data"},
		Title:  "Not found",
		Detail: "The requested resource does not exist",
	}
}

// InvalidAttribute はフィールド単位の422用エラーペイロードを返す。
func InvalidAttribute(field, message string) ErrorObject {
	return ErrorObject{
		Status: "422",
		Source: ErrorSource{Pointer: "/data/attributes/" + field},
		Title:  "Invalid attribute",
		Detail: message,
	}
}

// InternalServerError は500用の固定エラーペイロードを返す。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func InternalServerError() ErrorObject {
	return ErrorObject{
		Status: "500",
		Source: ErrorSource{Pointer: "/data"},
		Title:  "Internal server error",
		Detail: "Something went wrong. Please try again later",
	}
}
