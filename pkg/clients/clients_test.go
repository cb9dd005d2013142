package clients

import (
	"encoding/json"
	"testing"

	"github.com/DRSN-tech/shop-orders/internal/cfg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicReadPolicy(t *testing.T) {
	var policy struct {
		Statement []struct {
			Effect   string
			Action   []string
			Resource []string
		}
	}
	require.NoError(t, json.Unmarshal([]byte(PublicReadPolicy("images")), &policy))
	require.Len(t, policy.Statement, 1)
	assert.Equal(t, "Allow", policy.Statement[0].Effect)
	assert.Equal(t, []string{"s3:GetObject"}, policy.Statement[0].Action)
	assert.Equal(t, []string{"arn:aws:s3:::images/*"}, policy.Statement[0].Resource)
}

func TestNewMinIOClient(t *testing.T) {
	client, err := NewMinIOClient(&cfg.MinIOCfg{MinioEndpoint: "minio:9000", MinioRootUser: "u", MinioRootPassword: "p"})
	require.NoError(t, err)
	assert.Equal(t, "minio:9000", client.EndpointURL().Host)

	_, err = NewMinIOClient(&cfg.MinIOCfg{MinioEndpoint: "http://minio:9000/path"})
	assert.Error(t, err)
}
