package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)

	b, err := c.Marshal(&ValidateRequest{Username: "alice", PIN: "1234567", Cycle: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"username":"alice","pin":"1234567","cycle":2}`, string(b))

	var got ValidateRequest
	require.NoError(t, c.Unmarshal(b, &got))
	assert.Equal(t, 2, got.Cycle)
}

func TestIsPrivileged(t *testing.T) {
	assert.True(t, IsPrivileged("/cyclelogin.v1.CycleLogin/CreateUser"))
	assert.True(t, IsPrivileged(FullMethod(MethodResetVisitCount)))
	assert.False(t, IsPrivileged(FullMethod(MethodValidate)))
	assert.False(t, IsPrivileged("/other.Service/CreateUser"))
}

func TestUpdateLicenseRequest_ExpiresAtPresence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		set  bool
		want *int64
	}{
		{"absent", `{"addDays":3}`, false, nil},
		{"null", `{"expiresAt":null}`, true, nil},
		{"number", `{"expiresAt":1700000000000}`, true, ptr(1700000000000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r UpdateLicenseRequest
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, tt.set, r.ExpiresAt.Set)
			assert.Equal(t, tt.want, r.ExpiresAt.Value)
		})
	}
}

func TestUpdateLicenseRequest_MarshalOmitsAbsent(t *testing.T) {
	b, err := json.Marshal(UpdateLicenseRequest{ID: "u1"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u1"}`, string(b))

	b, err = json.Marshal(UpdateLicenseRequest{ExpiresAt: Some(nil)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"expiresAt":null}`, string(b))
}

func ptr(v int64) *int64 { return &v }

func TestBulkAddLicenseRequest_DaysOrDefault(t *testing.T) {
	zero, seven := 0.0, 7.0
	assert.Equal(t, float64(DefaultBulkDays), (&BulkAddLicenseRequest{}).DaysOrDefault())
	assert.Equal(t, float64(DefaultBulkDays), (&BulkAddLicenseRequest{Days: &zero}).DaysOrDefault())
	assert.Equal(t, 7.0, (&BulkAddLicenseRequest{Days: &seven}).DaysOrDefault())
}
