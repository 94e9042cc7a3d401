package handler

import (
	"github.com/hitoshi/blogapi/internal/jsonapi"
	"github.com/hitoshi/blogapi/internal/model"
	"github.com/hitoshi/blogapi/internal/repository"
)

// JSON:APIリソースタイプ名。
const (
	articleResourceType = "articles"
	commentResourceType = "comments"
	tokenResourceType   = "tokens"
	userResourceType    = "users"
)

// articleResource は記事をJSON:APIリソースに変換する。
func articleResource(a *model.Article) jsonapi.Resource {
	return jsonapi.Resource{
		Type: articleResourceType,
		ID:   a.ID,
		Attributes: map[string]any{
			"title":   a.Title,
			"content": a.Content,
			"slug":    a.Slug,
		},
		Relationships: map[string]jsonapi.Relationship{
			"user": {Data: jsonapi.ResourceIdentifier{Type: userResourceType, ID: a.UserID}},
		},
	}
}

// commentResource はコメントをJSON:APIリソースに変換する。
func commentResource(c *model.Comment) jsonapi.Resource {
	return jsonapi.Resource{
		Type: commentResourceType,
		ID:   c.ID,
		Attributes: map[string]any{
			"content": c.Content,
		},
		Relationships: map[string]jsonapi.Relationship{
			"article": {Data: jsonapi.ResourceIdentifier{Type: articleResourceType, ID: c.ArticleID}},
			"user":    {Data: jsonapi.ResourceIdentifier{Type: userResourceType, ID: c.UserID}},
		},
	}
}

// userResource はユーザーをJSON:APIリソースに変換する。
// コメント一覧のincludedセクションで使用する。
func userResource(u *model.User) jsonapi.Resource {
	return jsonapi.Resource{
		Type: userResourceType,
		ID:   u.ID,
		Attributes: map[string]any{
			"login":      u.Login,
			"name":       u.Name,
			"url":        u.URL,
			"avatar_url": u.AvatarURL,
		},
	}
}

// tokenResource はトークンをJSON:APIリソースに変換する。
// リソースIDにはトークン値そのものを使用する。属性は公開しない。
func tokenResource(t *model.Token) jsonapi.Resource {
	return jsonapi.Resource{
		Type: tokenResourceType,
		ID:   t.Value,
		Relationships: map[string]jsonapi.Relationship{
			"user": {Data: jsonapi.ResourceIdentifier{Type: userResourceType, ID: t.UserID}},
		},
	}
}

// commentListDocument はコメント一覧をincluded付きのドキュメントに変換する。
// 同一ユーザーの重複はincludedから除外する。
func commentListDocument(comments []repository.CommentWithAuthor) jsonapi.Document {
	resources := make([]jsonapi.Resource, 0, len(comments))
	var included []jsonapi.Resource
	seen := make(map[string]bool)

	for i := range comments {
		c := comments[i].Comment
		resources = append(resources, commentResource(&c))

		if !seen[comments[i].Author.ID] {
			seen[comments[i].Author.ID] = true
			included = append(included, userResource(&comments[i].Author))
		}
	}

	return jsonapi.Document{Data: resources, Included: included}
}
