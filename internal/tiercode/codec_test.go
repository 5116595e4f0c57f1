package tiercode

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/poku-e/tubtakes/internal/catalog"
	"github.com/poku-e/tubtakes/internal/tier"
)

func scenarioCatalog() *catalog.Catalog {
	return catalog.MustNew([]catalog.Flavor{
		{Name: "Blue Ice", Code: "A1"},
		{Name: "Watermelon", Code: "B2"},
	})
}

func TestEncodeScenario(t *testing.T) {
	t.Parallel()

	cat := scenarioCatalog()
	a := tier.Assignment{tier.S: {"Blue Ice"}, tier.A: {"Watermelon"}}

	raw, rep := RawEncode(a, cat)
	require.Equal(t, "SA1,AB2,", raw)
	require.True(t, rep.Clean())

	code, _ := Encode(a, cat)
	require.Equal(t, "U0ExLEFCMiw=", code)

	got, rep, err := Decode(code, cat)
	require.NoError(t, err)
	require.True(t, rep.Clean())
	want := tier.Assignment{
		tier.S: {"Blue Ice"}, tier.A: {"Watermelon"},
		tier.B: {}, tier.C: {}, tier.D: {}, tier.F: {},
	}
	require.Equal(t, want, got)
}

func TestEncodeIsDeterministic(t *testing.T) {
	t.Parallel()

	cat := catalog.Fallback()
	a := tier.Assignment{
		tier.F: {"Sour Cherry"},
		tier.S: {"Watermelon", "Blue Ice"},
		tier.C: {"Rainbow Sherbet"},
	}
	first, _ := Encode(a, cat)
	second, _ := Encode(a.Clone(), cat)
	require.Equal(t, first, second)
}

func TestEncodeSkipsUnknownAndEmptyTiers(t *testing.T) {
	t.Parallel()

	cat := scenarioCatalog()
	a := tier.Assignment{
		tier.S: {"Blue Ice", "Nope"},
		tier.A: {"Ghost"},
		tier.B: {"Blue Ice", "Watermelon"},
	}
	raw, rep := RawEncode(a, cat)
	require.Equal(t, "SA1,BB2,", raw)
	require.Equal(t, []string{"Nope", "Ghost"}, rep.Unresolved)
	require.Equal(t, 1, rep.Duplicates)
	require.Equal(t, 1, rep.SkippedTiers)
}

func TestEmptyAssignmentUsesSentinel(t *testing.T) {
	t.Parallel()

	cat := scenarioCatalog()
	for _, a := range []tier.Assignment{nil, tier.NewAssignment(), {tier.S: {"Unknown"}}} {
		code, _ := Encode(a, cat)
		require.Equal(t, EmptyCode, code)
		require.Equal(t, EmptyCode, URLSafe(code))

		got, _, err := Decode(code, cat)
		require.NoError(t, err)
		require.True(t, got.Empty())
		require.Len(t, got, len(tier.Order))
	}
}

func TestDecodeFirstOccurrenceWins(t *testing.T) {
	t.Parallel()

	cat := scenarioCatalog()
	// raw "SA1,AA1,B2,"
	got, rep, err := Decode("U0ExLEFBMSxCMiw=", cat)
	require.NoError(t, err)
	require.Equal(t, []string{"Blue Ice"}, got[tier.S])
	require.Equal(t, []string{"Watermelon"}, got[tier.A])
	require.Equal(t, 1, rep.Duplicates)
}

func TestDecodeDropsUnknownCodes(t *testing.T) {
	t.Parallel()

	cat := scenarioCatalog()
	// raw "SA1,ZZ,B2,"
	got, rep, err := Decode("U0ExLFpaLEIyLA==", cat)
	require.NoError(t, err)
	require.Equal(t, []string{"Blue Ice", "Watermelon"}, got[tier.S])
	require.Equal(t, []string{"ZZ"}, rep.Unresolved)
}

func TestDecodeRepairsURLSafeInput(t *testing.T) {
	t.Parallel()

	cat := catalog.MustNew([]catalog.Flavor{
		{Name: "Blue Ice", Code: "A1"},
		{Name: "Watermelon", Code: "B2"},
		{Name: "Sour Cherry", Code: "Z9"},
	})
	a := tier.Assignment{tier.S: {"Sour Cherry"}, tier.D: {"Blue Ice", "Watermelon"}}
	code, _ := Encode(a, cat)

	got, _, err := Decode(URLSafe(code), cat)
	require.NoError(t, err)
	require.True(t, a.Equal(got))
}

func TestDecodeInvalid(t *testing.T) {
	t.Parallel()

	cat := scenarioCatalog()
	cases := map[string]string{
		"empty":           "",
		"not base64":      "***",
		"bad structure":   "eEExLA==", // "xA1,"
		"unknown version": "ITJTQTEs", // "!2SA1,"
	}
	for name, code := range cases {
		t.Run(name, func(t *testing.T) {
			got, _, err := Decode(code, cat)
			require.ErrorIs(t, err, ErrInvalidEncoding)
			require.Nil(t, got)
		})
	}
}

func TestVersionedRoundTrip(t *testing.T) {
	t.Parallel()

	cat := scenarioCatalog()
	a := tier.Assignment{tier.S: {"Blue Ice"}, tier.A: {"Watermelon"}}
	code, _ := EncodeVersioned(a, cat)
	require.Equal(t, "ITFTQTEsQUIyLA==", code)

	got, _, err := Decode(code, cat)
	require.NoError(t, err)
	require.True(t, a.Equal(got))
}

func TestScanTokens(t *testing.T) {
	t.Parallel()

	cases := []struct {
		raw  string
		want []string
	}{
		{"SA1,AB2,", []string{"S", "S:A1", "A", "A:B2"}},
		{"SA1,B2,", []string{"S", "S:A1", "S:B2"}},
		{"SA1,AB2", []string{"S", "S:A1", "A", "A:B2"}},
		{"SFA,", []string{"S", "S:FA"}},
		{"SA", []string{"S", "A"}},
		{"S__,A", []string{"S", "S:__", "A"}},
		{"S1A,", []string{"S", "S:1A"}},
		{"SA1B2,", []string{"S", "A", "A:1B2"}},
		{"", nil},
	}
	for _, tc := range cases {
		var got []string
		err := Scan(tc.raw, func(tok Token) {
			if tok.Opens() {
				got = append(got, tok.Tier.String())
				return
			}
			got = append(got, tok.Tier.String()+":"+tok.Ident)
		})
		require.NoError(t, err, tc.raw)
		require.Equal(t, tc.want, got, tc.raw)
	}
}

// Codes built from tier letters are the hard case for the scanner.
func TestRoundTripRandomAssignments(t *testing.T) {
	t.Parallel()

	const alphabet = "SABCDF01"
	var flavors []catalog.Flavor
	for i := 0; i < len(alphabet); i++ {
		for j := 0; j < len(alphabet); j++ {
			code := string([]byte{alphabet[i], alphabet[j]})
			flavors = append(flavors, catalog.Flavor{Name: fmt.Sprintf("Flavor %s", code), Code: code})
		}
	}
	cat := catalog.MustNew(flavors)
	rng := rand.New(rand.NewSource(7))

	for n := 0; n < 200; n++ {
		a := tier.NewAssignment()
		for _, idx := range rng.Perm(len(flavors))[:rng.Intn(len(flavors))] {
			tr := tier.Order[rng.Intn(len(tier.Order))]
			a.Add(tr, flavors[idx].Name)
		}
		code, rep := Encode(a, cat)
		require.True(t, rep.Clean())

		got, rep, err := Decode(code, cat)
		require.NoError(t, err)
		require.True(t, rep.Clean())
		require.True(t, a.Equal(got), "code %s", code)
	}
}
