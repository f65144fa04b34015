package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v5/weaviate"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v5/weaviate/graphql"

	"opsdesk/apps/backend/internal/worker"
)

const className = "MessageEmbedding"

// listPageSize bounds a single GraphQL Get page when walking the full index.
const listPageSize = 1000

type Store struct {
	client *weaviate.Client
}

func NewStore(client *weaviate.Client) *Store {
	return &Store{client: client}
}

func (s *Store) SaveEmbedding(ctx context.Context, emb worker.Embedding) error {
	_, err := s.client.Data().Creator().
		WithClassName(className).
		WithProperties(map[string]interface{}{
			"messageId": emb.MessageID,
			"ticketId":  emb.TicketID,
			"body":      emb.Body,
		}).
		WithVector(emb.Vector).
		Do(ctx)
	return err
}

func (s *Store) DeleteEmbeddingsByMessageID(ctx context.Context, messageID string) error {
	_, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(className).
		WithOutput("minimal").
		WithWhere(filters.Where().
			WithPath([]string{"messageId"}).
			WithOperator(filters.Equal).
			WithValueString(messageID)).
		Do(ctx)
	return err
}

// ListEmbeddedMessageIDs pages through the whole class and returns every
// stored message id. Duplicates collapse to one entry.
func (s *Store) ListEmbeddedMessageIDs(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var ids []string

	for offset := 0; ; offset += listPageSize {
		res, err := s.client.GraphQL().Get().
			WithClassName(className).
			WithFields(graphql.Field{Name: "messageId"}).
			WithLimit(listPageSize).
			WithOffset(offset).
			Do(ctx)
		if err != nil {
			return nil, err
		}
		if len(res.Errors) > 0 {
			return nil, fmt.Errorf("graphql error: %v", res.Errors)
		}

		count := 0
		if data, ok := res.Data["Get"].(map[string]interface{}); ok {
			if objects, ok := data[className].([]interface{}); ok {
				count = len(objects)
				for _, o := range objects {
					props, ok := o.(map[string]interface{})
					if !ok {
						continue
					}
					id, ok := props["messageId"].(string)
					if !ok {
						continue
					}
					if _, dup := seen[id]; dup {
						continue
					}
					seen[id] = struct{}{}
					ids = append(ids, id)
				}
			}
		}

		if count < listPageSize {
			return ids, nil
		}
	}
}

func (s *Store) CountEmbeddings(ctx context.Context) (int, error) {
	res, err := s.client.GraphQL().Aggregate().
		WithClassName(className).
		WithFields(graphql.Field{Name: "meta", Fields: []graphql.Field{{Name: "count"}}}).
		Do(ctx)
	if err != nil {
		return 0, err
	}
	if len(res.Errors) > 0 {
		return 0, fmt.Errorf("graphql error: %v", res.Errors)
	}

	if data, ok := res.Data["Aggregate"].(map[string]interface{}); ok {
		if objects, ok := data[className].([]interface{}); ok && len(objects) > 0 {
			if props, ok := objects[0].(map[string]interface{}); ok {
				if meta, ok := props["meta"].(map[string]interface{}); ok {
					if count, ok := meta["count"].(float64); ok {
						return int(count), nil
					}
				}
			}
		}
	}
	return 0, nil
}
