package share

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/poku-e/tubtakes/internal/catalog"
	"github.com/poku-e/tubtakes/internal/remapstore"
	"github.com/poku-e/tubtakes/internal/shortcode"
	"github.com/poku-e/tubtakes/internal/tier"
	"github.com/poku-e/tubtakes/internal/tiercode"
)

func newService(opts ...Option) *Service {
	comp := shortcode.New(remapstore.NewMemory(16, time.Hour))
	return New(catalog.Fallback(), comp, opts...)
}

func sample() tier.Assignment {
	a := tier.NewAssignment()
	a.Add(tier.S, "Blue Ice")
	a.Add(tier.A, "Watermelon")
	return a
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newService(WithPublicURL("https://tubtakes.example/"))

	sh, err := s.Export(ctx, sample(), "alice")
	require.NoError(t, err)
	require.Equal(t, "U0ExLEFCMiw=", sh.Code)
	require.True(t, shortcode.IsShort(sh.Short))
	require.Equal(t, shortcode.ChatCommand(sh.Short), sh.Command)
	require.Equal(t, "https://tubtakes.example/?c=U0ExLEFCMiw", sh.Link)
	require.True(t, sh.Report.Clean())

	for _, input := range []string{sh.Code, sh.Short, sh.Command, tiercode.URLSafe(sh.Code)} {
		got, err := s.Import(ctx, input, "alice")
		require.NoError(t, err, input)
		require.True(t, got.Exact, input)
		require.True(t, sample().Equal(got.Tiers), input)
	}
}

func TestImportWithoutRemapTable(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newService()

	sh, err := s.Export(ctx, sample(), "alice")
	require.NoError(t, err)

	got, err := s.Import(ctx, sh.Short, "bob")
	require.NoError(t, err)
	require.False(t, got.Exact)
	require.True(t, got.Short)
	require.True(t, got.RemapMissing)
	require.Equal(t, 2, got.Placeholders)
	require.Empty(t, got.Unresolved)
	require.True(t, got.Tiers.Empty())

	raw, err := tiercode.RawText(got.Code)
	require.NoError(t, err)
	require.Equal(t, "S__,A__,", raw)

	require.NoError(t, s.Forget(ctx, "alice"))
	got, err = s.Import(ctx, sh.Short, "alice")
	require.NoError(t, err)
	require.True(t, got.RemapMissing)
}

func TestImportReportsUnknownCodes(t *testing.T) {
	t.Parallel()
	s := newService()

	code := base64.StdEncoding.EncodeToString([]byte("SA1,ZZ,AA1,"))
	got, err := s.Import(context.Background(), code, "")
	require.NoError(t, err)
	require.False(t, got.Exact)
	require.False(t, got.Short)
	require.Equal(t, []string{"ZZ"}, got.Unresolved)
	require.Equal(t, 1, got.Duplicates)
	require.Equal(t, []string{"Blue Ice"}, got.Tiers[tier.S])
}

func TestImportErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newService()

	_, err := s.Import(ctx, "%%%", "")
	require.ErrorIs(t, err, tiercode.ErrInvalidEncoding)

	_, err = s.Import(ctx, shortcode.Prefix+"AAAA", "")
	require.ErrorIs(t, err, shortcode.ErrDecompression)

	_, err = s.Import(ctx, "/rank code:x", "")
	require.Error(t, err)
}

func TestExportEmptyAssignment(t *testing.T) {
	t.Parallel()
	s := newService()

	sh, err := s.Export(context.Background(), tier.NewAssignment(), "")
	require.NoError(t, err)
	require.Equal(t, tiercode.EmptyCode, sh.Code)
	require.Equal(t, tiercode.EmptyCode, sh.Short)

	got, err := s.Import(context.Background(), sh.Command, "")
	require.NoError(t, err)
	require.True(t, got.Exact)
	require.True(t, got.Tiers.Empty())
}

func TestLinkForShortCode(t *testing.T) {
	t.Parallel()
	require.Equal(t, "/?s=TT-abc", newService().Link("TT-abc"))
}

func TestResolveThenExport(t *testing.T) {
	t.Parallel()
	s := newService()

	a := tier.NewAssignment()
	a.Add(tier.S, "blue ice")
	a.Add(tier.A, "Watermelonn")
	a.Add(tier.A, "Quux Fizz Deluxe")

	resolved := s.Resolve(a)
	require.Equal(t, []string{"Blue Ice"}, resolved[tier.S])
	require.Equal(t, []string{"Watermelon", "Quux Fizz Deluxe"}, resolved[tier.A])

	sh, err := s.Export(context.Background(), resolved, "")
	require.NoError(t, err)
	require.Equal(t, "U0ExLEFCMiw=", sh.Code)
	require.Equal(t, []string{"Quux Fizz Deluxe"}, sh.Report.Unresolved)
}

func TestCompressDecompressBySlot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newService()

	short, err := s.Compress(ctx, "U0ExLEFCMiw=", "x")
	require.NoError(t, err)
	exp, err := s.Decompress(ctx, short, "x")
	require.NoError(t, err)
	require.True(t, exp.Exact)
	require.Equal(t, "U0ExLEFCMiw=", exp.Code)
}
