package persistent

import (
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTotalsQuery(t *testing.T) {
	sql, args, err := totalsQuery(squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT COUNT(*), "+
			"COUNT(*) FILTER (WHERE license = $1), "+
			"COUNT(*) FILTER (WHERE license = $2), "+
			"COALESCE(SUM(download_count), 0), "+
			"COALESCE(SUM(new_price), 0) "+
			"FROM listings",
		sql)
	assert.Equal(t, []any{"free", "premium"}, args)
}
