package integration

import (
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Hyunju-it/goorm-travel-shopping/internal/catalog"
	"github.com/Hyunju-it/goorm-travel-shopping/internal/database/dbtest"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(strings.Join(append([]string{strings.Join(catalog.Columns, ",")}, lines...), "\n") + "\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	return path
}

func TestCatalogImport_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	env := SetupTestEnv(t)
	dbtest.Truncate(t, env.Pool)
	ctx := context.Background()
	dir := t.TempDir()

	first := writeSeedFile(t, dir, "tours-1.csv.gz",
		"TOUR-JEJU,Jeju Island Tour,tour,160000,,40,ACTIVE",
		"TOUR-DMZ,DMZ Half Day Tour,tour,70000,,0,INACTIVE",
	)
	second := writeSeedFile(t, dir, "tours-2.csv.gz",
		"TOUR-JEJU,Jeju Island Tour,tour,150000,120000,50,ACTIVE",
		`STAY-BUSAN,"Busan Haeundae Stay, 1 night",stay,80000,,3,`,
	)

	importer := catalog.NewImporter(catalog.NewFileLoader(zerolog.Nop()), env.Products, zerolog.Nop())

	n, err := importer.Import(ctx, []string{first, second})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	products, err := env.Products.GetAll(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, products, 3)

	bySKU := make(map[string]int)
	for i, p := range products {
		bySKU[p.SKU] = i
	}
	jeju := products[bySKU["TOUR-JEJU"]]
	assert.Equal(t, "150000", jeju.Price.String())
	assert.Equal(t, 50, jeju.StockQuantity)
	assert.Equal(t, "Busan Haeundae Stay, 1 night", products[bySKU["STAY-BUSAN"]].Name)

	// Re-importing updates rows in place.
	n, err = importer.Import(ctx, []string{second})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	products, err = env.Products.GetAll(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, products, 3)
}
