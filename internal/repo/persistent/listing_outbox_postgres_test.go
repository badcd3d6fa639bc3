package persistent

import (
	"testing"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/listing-admin/internal/entity"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateQuery(t *testing.T) {
	b := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
	insert := "INSERT INTO listings_outbox " +
		"(id,aggregate_id,event_type,payload,status,created_at,retry_count) " +
		"VALUES ($1,$2,$3,$4,$5,$6,$7)"

	tests := []struct {
		name string
		typ  entity.EventType
		want string
	}{
		{
			name: "created",
			typ:  entity.ListingCreated,
			want: insert + " RETURNING id",
		},
		{
			name: "updated merges into the pending update",
			typ:  entity.ListingUpdated,
			want: insert +
				" ON CONFLICT (aggregate_id) WHERE status = 'pending' AND event_type = 'listing.updated' AND retry_count = 0" +
				" DO UPDATE SET payload = EXCLUDED.payload RETURNING id",
		},
		{
			name: "deleted",
			typ:  entity.ListingDeleted,
			want: insert + " RETURNING id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &entity.OutboxEvent{
				ID:          uuid.New(),
				AggregateID: uuid.New(),
				Type:        tt.typ,
				Payload:     []byte(`{}`),
				Status:      entity.Pending,
				CreatedAt:   time.Now(),
			}

			sql, args, err := createQuery(b, event).ToSql()
			require.NoError(t, err)

			assert.Equal(t, tt.want, sql)
			require.Len(t, args, 7)
			assert.Equal(t, string(tt.typ), args[2])
		})
	}
}
