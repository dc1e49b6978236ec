package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-attendance-auth/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// UserIndex mirrors users into an Elasticsearch index for admin search.
type UserIndex struct {
	es    *elasticsearch.Client
	index string
}

// NewUserIndex returns nil when es is nil or index is empty.
func NewUserIndex(es *elasticsearch.Client, index string) *UserIndex {
	if es == nil || index == "" {
		return nil
	}
	return &UserIndex{es: es, index: index}
}

type userDoc struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	FirstName       string    `json:"first_name"`
	LastName        string    `json:"last_name"`
	Name            string    `json:"name"`
	IsVerified      bool      `json:"is_verified"`
	ProfilePhotoURL *string   `json:"profile_photo_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toDoc(u *entity.User) userDoc {
	return userDoc{
		ID:              u.ID,
		Email:           u.Email,
		FirstName:       u.FirstName,
		LastName:        u.LastName,
		Name:            u.FullName(),
		IsVerified:      u.IsVerified,
		ProfilePhotoURL: u.ProfilePhotoURL,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (d userDoc) user() entity.User {
	return entity.User{
		ID:              d.ID,
		Email:           d.Email,
		FirstName:       d.FirstName,
		LastName:        d.LastName,
		IsVerified:      d.IsVerified,
		ProfilePhotoURL: d.ProfilePhotoURL,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

func (x *UserIndex) IndexUser(ctx context.Context, u *entity.User) error {
	b, err := json.Marshal(toDoc(u))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.index,
		DocumentID: strconv.FormatInt(u.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

func (x *UserIndex) DeleteUser(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: x.index, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.es)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// SearchUsers runs a multi_match on email and name.
func (x *UserIndex) SearchUsers(ctx context.Context, q string, size int) ([]entity.User, error) {
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.es.Search(
		x.es.Search.WithContext(c),
		x.es.Search.WithIndex(x.index),
		x.es.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source userDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]entity.User, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source.user())
	}
	return out, nil
}
