package codec

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/holdings/pkg/types"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"TRUE", true, false},
		{" t ", true, false},
		{"1", true, false},
		{"Yes", true, false},
		{"y", true, false},
		{"false", false, false},
		{"F", false, false},
		{"0", false, false},
		{"no", false, false},
		{"N", false, false},
		{"", false, true},
		{"maybe", false, true},
		{"2", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseBool(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatBoolRoundTrips(t *testing.T) {
	for _, b := range []bool{true, false} {
		got, err := ParseBool(FormatBool(b))
		require.NoError(t, err)
		assert.Equal(t, b, got)
	}
}

func TestParseInt(t *testing.T) {
	n, err := ParseInt(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, 42, n)

	_, err = ParseInt("16.0")
	assert.ErrorIs(t, err, types.ErrFormat)

	n, err = ParseIntLenient("16.0")
	require.NoError(t, err)
	assert.Equal(t, 16, n)

	n, err = ParseIntLenient("2.021E3")
	require.NoError(t, err)
	assert.Equal(t, 2021, n)

	_, err = ParseIntLenient("16.5")
	assert.ErrorIs(t, err, types.ErrFormat)

	_, err = ParseIntLenient("sixteen")
	assert.ErrorIs(t, err, types.ErrFormat)
}

func TestRow(t *testing.T) {
	p := types.NewPerson("P-1", "Ada", 36, false)
	assert.Equal(t, []string{"P-1", "Ada", "36", "false"}, Row(p))

	b := types.NewBicycle("B-1", "Cube", "Acid", 2020, types.OwnedBy(p))
	assert.Equal(t, []string{"B-1", "Cube", "Acid", "2020", "P-1"}, Row(b))

	l := types.NewLaptop("L-1", "Dell", "XPS", 2022, 16, 8)
	assert.Equal(t, []string{"L-1", "Dell", "XPS", "2022", "16", "8", ""}, Row(l))
}

func TestNewHeader(t *testing.T) {
	h, err := NewHeader(types.KindPerson, []string{"Male", "extra", " ID", "name", "age"})
	require.NoError(t, err)
	assert.Equal(t, 2, h["id"])
	assert.Equal(t, 0, h["male"])

	_, err = NewHeader(types.KindLaptop, BicycleColumns)
	assert.ErrorIs(t, err, types.ErrFormat)
}

func TestDecoderReordersColumns(t *testing.T) {
	h, err := NewHeader(types.KindLaptop, []string{"owner_id", "vram", "ram", "year", "model", "brand", "id"})
	require.NoError(t, err)

	d := NewDecoder(types.KindLaptop, h, nil)
	require.NoError(t, d.Add(2, []string{"P-9", "8", "16", "2022", "XPS", "Dell", "L-1"}))
	require.NoError(t, d.Add(3, []string{"", "0", "8", "2019", "T480", "Lenovo", "L-2"}))

	batch := d.Batch()
	require.Equal(t, types.KindLaptop, batch.Kind)
	require.Len(t, batch.Laptops, 2)
	assert.Equal(t, "P-9", batch.Laptops[0].OwnerID)
	assert.Equal(t, 16, batch.Laptops[0].RAM)
	assert.Nil(t, batch.Laptops[0].Owner)
	assert.Equal(t, "", batch.Laptops[1].OwnerID)
}

func TestDecoderErrors(t *testing.T) {
	h, err := NewHeader(types.KindPerson, PersonColumns)
	require.NoError(t, err)

	d := NewDecoder(types.KindPerson, h, ParseInt)
	assert.ErrorIs(t, d.Add(2, []string{"P-1", "Ada", "old", "true"}), types.ErrFormat)
	assert.ErrorIs(t, d.Add(3, []string{"P-1", "Ada", "36", "sometimes"}), types.ErrFormat)
	assert.ErrorIs(t, d.Add(4, []string{"", "Ada", "36", "true"}), types.ErrFormat)
	assert.ErrorIs(t, d.Add(5, []string{"P-1"}), types.ErrFormat, "short rows fail on the first missing value")
}

func TestRecordsJSONNullOwner(t *testing.T) {
	owned := types.NewBicycle("B-1", "Cube", "Acid", 2020, types.OwnedByID("P-1"))
	free := types.NewBicycle("B-2", "Trek", "Marlin", 2021)

	recs, err := Records(types.BicyclesBatch([]*types.Bicycle{owned, free}))
	require.NoError(t, err)
	data, err := json.Marshal(recs)
	require.NoError(t, err)

	assert.JSONEq(t, `[
		{"id":"B-1","brand":"Cube","model":"Acid","year":2020,"owner_id":"P-1"},
		{"id":"B-2","brand":"Trek","model":"Marlin","year":2021,"owner_id":null}
	]`, string(data))
}

func TestDecodeRecordsYAML(t *testing.T) {
	doc := []byte(`
- id: L-1
  brand: Dell
  model: XPS
  year: 2022
  ram: 16
  vram: 8
  owner_id: P-1
- id: L-2
  brand: Apple
  model: Air
  year: 2023
  ram: 8
  vram: 0
  owner_id: null
`)
	batch, err := DecodeRecords(types.KindLaptop, doc, yaml.Unmarshal)
	require.NoError(t, err)
	require.Len(t, batch.Laptops, 2)
	assert.Equal(t, "P-1", batch.Laptops[0].OwnerID)
	assert.Equal(t, "", batch.Laptops[1].OwnerID)
}

func TestDecodeRecordsRejectsBadDocuments(t *testing.T) {
	_, err := DecodeRecords(types.KindPerson, []byte(`{"id":"P-1"}`), json.Unmarshal)
	assert.ErrorIs(t, err, types.ErrFormat, "object instead of array")

	_, err = DecodeRecords(types.KindPerson, []byte(`[{"name":"Ada"}]`), json.Unmarshal)
	assert.ErrorIs(t, err, types.ErrFormat, "missing id")

	_, err = DecodeRecords(types.Kind(0), []byte(`[]`), json.Unmarshal)
	assert.ErrorIs(t, err, types.ErrUnknownType)
}

func TestFileKey(t *testing.T) {
	assert.Equal(t, "people.csv", FileKey("people", ".csv"))
	assert.Equal(t, "exports/people.csv", FileKey("exports/people", ".csv"))
	assert.Equal(t, "people.txt", FileKey("people.txt", ".csv"))
}
