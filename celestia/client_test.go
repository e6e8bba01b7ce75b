package celestia

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBalances(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			require.Equal(
				t,
				"/cosmos/bank/v1beta1/balances/celestia1abc",
				r.URL.Path,
			)
			w.Write([]byte(`{"balances":[{"denom":"utia","amount":"5"}]}`))
		},
	))
	defer srv.Close()

	body, err := NewClient(srv.URL).Balances(
		context.Background(),
		"celestia1abc",
	)
	require.NoError(t, err)
	require.JSONEq(
		t,
		`{"balances":[{"denom":"utia","amount":"5"}]}`,
		string(body),
	)
}

func TestBroadcastTx(t *testing.T) {
	testCases := []struct {
		name       string
		body       string
		wantErr    bool
		wantRawLog string
	}{
		{
			name: "accepted",
			body: `{"tx_response":{"code":0,"txhash":"abc"}}`,
		},
		{
			name:       "rejected with raw log",
			body:       `{"tx_response":{"code":5,"raw_log":"insufficient funds"}}`,
			wantErr:    true,
			wantRawLog: "insufficient funds",
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					req := &broadcastRequest{}
					require.NoError(
						t,
						json.NewDecoder(r.Body).Decode(req),
					)
					require.Equal(t, "dGVzdA==", req.TxBytes)
					require.Equal(t, "BROADCAST_MODE_SYNC", req.Mode)
					w.Write([]byte(c.body))
				},
			))
			defer srv.Close()

			_, err := NewClient(srv.URL).BroadcastTx(
				context.Background(),
				"dGVzdA==",
				"",
			)
			if !c.wantErr {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			be := &BroadcastError{}
			require.ErrorAs(t, err, &be)
			require.Equal(t, c.wantRawLog, be.RawLog)
		})
	}
}
