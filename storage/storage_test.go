package storage

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/require"

	"listings-pipeline/models"
)

func TestArchiveKey(t *testing.T) {
	bogota := time.FixedZone("COT", -5*3600)
	// 21:30 in Bogotá on the 3rd is already the 4th in UTC
	now := time.Date(2024, 3, 3, 21, 30, 0, 0, bogota)
	require.Equal(t, "2024-03-04.html", ArchiveKey(now))
}

func TestTableKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-04.html", "2024-03-04.csv"},
		{"04-03-2024.html", "04-03-2024.csv"},
		{"archive.html.html", "archive.html.csv"},
		{"reports/2024-03-04.html", "reports/2024-03-04.csv"},
		{"no-extension", "no-extension.csv"},
	}

	for _, tt := range tests {
		if got := TableKey(tt.in); got != tt.want {
			t.Errorf("TableKey(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestDownloadDate(t *testing.T) {
	require.Equal(t, "2024-03-04", DownloadDate("2024-03-04.html"))
	require.Equal(t, "not-a-date", DownloadDate("not-a-date.html"))
}

func TestEncodeCSVHeaderAndOrder(t *testing.T) {
	records := []models.Record{
		{DownloadDate: "2024-03-04", Neighborhood: "Chapinero, Bogotá", Price: "$ 250.000.000", Bedrooms: "1", Bathrooms: "1", Area: "38"},
		{DownloadDate: "2024-03-04", Neighborhood: "N/A", Price: "N/A", Bedrooms: "N/A", Bathrooms: "N/A", Area: "N/A"},
		{DownloadDate: "2024-03-04", Neighborhood: `Usaquén "Norte"`, Price: "$ 199.000.000", Bedrooms: "2", Bathrooms: "1", Area: "45"},
	}

	out, err := EncodeCSV(records)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.Equal(t, []string{"FechaDescarga", "Barrio", "Valor", "NumHabitaciones", "NumBanos", "mts2"}, rows[0])
	for i, r := range records {
		require.Equal(t, r.Row(), rows[i+1])
	}

	require.True(t, bytes.HasPrefix(out, []byte("FechaDescarga,Barrio,Valor,NumHabitaciones,NumBanos,mts2\n")))
	require.Contains(t, string(out), `"Chapinero, Bogotá"`)
	require.Contains(t, string(out), `"Usaquén ""Norte"""`)
}

func TestEncodeCSVEmpty(t *testing.T) {
	out, err := EncodeCSV(nil)
	require.NoError(t, err)
	require.Equal(t, "FechaDescarga,Barrio,Valor,NumHabitaciones,NumBanos,mts2\n", string(out))
}

func TestMemoryStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()

	require.NoError(t, m.Put(ctx, "parcials", "2024-03-04.html", []byte("first"), ContentTypeHTML))
	require.NoError(t, m.Put(ctx, "parcials", "2024-03-04.html", []byte("second"), ContentTypeHTML))

	body, err := m.Get(ctx, "parcials", "2024-03-04.html")
	require.NoError(t, err)
	require.Equal(t, "second", string(body))
	require.Equal(t, 1, m.Len())
	require.Len(t, m.Puts(), 2)

	_, err = m.Get(ctx, "parcials", "missing.html")
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestFSStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, "parcials", "2024-03-04.csv", []byte("a,b\n"), ContentTypeCSV))
	require.NoError(t, s.Put(ctx, "parcials", "2024-03-04.csv", []byte("c,d\n"), ContentTypeCSV))

	body, err := s.Get(ctx, "parcials", "2024-03-04.csv")
	require.NoError(t, err)
	require.Equal(t, "c,d\n", string(body))

	_, err = s.Get(ctx, "parcials", "nope.csv")
	require.ErrorIs(t, err, ErrNotFound)

	err = s.Put(ctx, "parcials", "../../escape.csv", []byte("x"), ContentTypeCSV)
	require.Error(t, err)
	err = s.Put(ctx, "..", "escape.csv", []byte("x"), ContentTypeCSV)
	require.Error(t, err)
}

func TestFSStoreRelativeRoot(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { os.Chdir(wd) })

	ctx := context.Background()
	for _, root := range []string{".", "./data", "data/"} {
		s, err := NewFSStore(root)
		require.NoError(t, err)

		require.NoError(t, s.Put(ctx, "parcials", "2024-03-04.html", []byte("<html></html>"), ContentTypeHTML), root)
		body, err := s.Get(ctx, "parcials", "2024-03-04.html")
		require.NoError(t, err, root)
		require.Equal(t, "<html></html>", string(body))

		require.Error(t, s.Put(ctx, "parcials", "../../escape.html", []byte("x"), ContentTypeHTML), root)
	}
}

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	k := aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	f.objects[k] = body
	f.types[k] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func TestS3Store(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	s := NewS3StoreWithClient(fake)

	require.NoError(t, s.Put(ctx, "parcials", "2024-03-04.html", []byte("<html></html>"), ContentTypeHTML))
	require.Equal(t, "text/html", fake.types["parcials/2024-03-04.html"])

	body, err := s.Get(ctx, "parcials", "2024-03-04.html")
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(body))

	_, err = s.Get(ctx, "parcials", "missing.html")
	require.ErrorIs(t, err, ErrNotFound)
}
