package files

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKey(t *testing.T) {
	assert.Equal(t, "Villa/АР/plan.pdf", Key("Villa", "АР", "plan.pdf"))
	assert.Equal(t, "Villa/plan.pdf", Key("Villa", "", "../plan.pdf"))
	assert.Equal(t, DefaultFolder+"/a.jpg", Key("", "", "a.jpg"))
	assert.Equal(t, "Villa/Section 1/x.png", Key("Villa", "Section #1!", "x.png"))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("a.PDF"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}

func TestS3Store_Put(t *testing.T) {
	var gotPath, gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := s3.New(s3.Options{
		Region:                     "us-east-1",
		BaseEndpoint:               aws.String(srv.URL),
		UsePathStyle:               true,
		Credentials:                aws.AnonymousCredentials{},
		RequestChecksumCalculation: aws.RequestChecksumCalculationWhenRequired,
	})
	store := NewS3StoreWithClient(client, Config{Bucket: "studio", Endpoint: srv.URL})

	url, err := store.Put(context.Background(), "Villa/plan.pdf", strings.NewReader("data"), 4, "")
	require.NoError(t, err)
	assert.Equal(t, "/studio/Villa/plan.pdf", gotPath)
	assert.Equal(t, "data", gotBody)
	assert.Equal(t, "application/pdf", gotType)
	assert.Equal(t, srv.URL+"/studio/Villa/plan.pdf", url)
}

func TestS3Store_URL(t *testing.T) {
	s := NewS3StoreWithClient(nil, Config{Bucket: "b", Region: "eu-central-1"})
	assert.Equal(t, "https://b.s3.eu-central-1.amazonaws.com/Villa/a%20b.pdf", s.URL("Villa/a b.pdf"))

	s = NewS3StoreWithClient(nil, Config{Bucket: "b", PublicBaseURL: "https://cdn.example.com/"})
	assert.Equal(t, "https://cdn.example.com/x.png", s.URL("x.png"))
}

func TestNop(t *testing.T) {
	_, err := Nop{}.Put(context.Background(), "k", strings.NewReader(""), 0, "")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
