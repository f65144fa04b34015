package webhook_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"opsdesk/apps/backend/features/webhook"
)

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("RecordsStatusCode", func(t *testing.T) {
		var received map[string]interface{}
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&received)
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		repo := new(MockRepo)
		repo.On("ListEnabledWebhooks", mock.Anything).Return([]webhook.Webhook{
			{ID: "wh-1", Name: "ops", URL: ts.URL, Enabled: true},
		}, nil)

		var logged *webhook.DeliveryLogEntry
		repo.On("AppendDeliveryLog", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			logged = args.Get(1).(*webhook.DeliveryLogEntry)
		}).Return(nil)

		d := webhook.NewDispatcher(repo, 5*time.Second, testLogger())
		err := d.Dispatch(context.Background(), "operation.completed", map[string]string{"operation_id": "op-1"})

		assert.NoError(t, err)
		assert.NotNil(t, logged)
		assert.Equal(t, "wh-1", logged.WebhookID)
		assert.Equal(t, "operation.completed", logged.Event)
		assert.NotNil(t, logged.StatusCode)
		assert.Equal(t, 200, *logged.StatusCode)

		assert.Equal(t, "operation.completed", received["event"])
	})

	t.Run("TransportFailureLogsNullStatus", func(t *testing.T) {
		// A server that is already closed gives a connection error, not a
		// status code.
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		ts.Close()

		repo := new(MockRepo)
		repo.On("ListEnabledWebhooks", mock.Anything).Return([]webhook.Webhook{
			{ID: "wh-1", Name: "ops", URL: ts.URL, Enabled: true},
		}, nil)

		var logged *webhook.DeliveryLogEntry
		repo.On("AppendDeliveryLog", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			logged = args.Get(1).(*webhook.DeliveryLogEntry)
		}).Return(nil)

		d := webhook.NewDispatcher(repo, 2*time.Second, testLogger())
		err := d.Dispatch(context.Background(), "operation.failed", nil)

		assert.NoError(t, err)
		assert.NotNil(t, logged)
		assert.Nil(t, logged.StatusCode)
	})

	t.Run("RejectionStillLogged", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer ts.Close()

		repo := new(MockRepo)
		repo.On("ListEnabledWebhooks", mock.Anything).Return([]webhook.Webhook{
			{ID: "wh-1", Name: "ops", URL: ts.URL, Enabled: true},
		}, nil)

		var logged *webhook.DeliveryLogEntry
		repo.On("AppendDeliveryLog", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			logged = args.Get(1).(*webhook.DeliveryLogEntry)
		}).Return(nil)

		d := webhook.NewDispatcher(repo, 2*time.Second, testLogger())
		err := d.Dispatch(context.Background(), "operation.completed", nil)

		assert.NoError(t, err)
		assert.Equal(t, 500, *logged.StatusCode)
	})

	t.Run("NoEnabledWebhooks", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("ListEnabledWebhooks", mock.Anything).Return([]webhook.Webhook{}, nil)

		d := webhook.NewDispatcher(repo, 2*time.Second, testLogger())
		err := d.Dispatch(context.Background(), "operation.completed", nil)

		assert.NoError(t, err)
		repo.AssertNotCalled(t, "AppendDeliveryLog", mock.Anything, mock.Anything)
	})

	t.Run("DeliversToAllEnabled", func(t *testing.T) {
		hits := 0
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits++
			w.WriteHeader(http.StatusOK)
		}))
		defer ts.Close()

		repo := new(MockRepo)
		repo.On("ListEnabledWebhooks", mock.Anything).Return([]webhook.Webhook{
			{ID: "wh-1", URL: ts.URL},
			{ID: "wh-2", URL: ts.URL},
		}, nil)
		repo.On("AppendDeliveryLog", mock.Anything, mock.Anything).Return(nil)

		d := webhook.NewDispatcher(repo, 2*time.Second, testLogger())
		err := d.Dispatch(context.Background(), "operation.completed", nil)

		assert.NoError(t, err)
		assert.Equal(t, 2, hits)
		repo.AssertNumberOfCalls(t, "AppendDeliveryLog", 2)
	})
}
