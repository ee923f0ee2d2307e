package donation_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/Mohsinsiddi/bonded/internal/donation"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialerFor(backends map[string]*fakeChain) donation.Dialer {
	return func(_ context.Context, url string) (donation.Backend, error) {
		b, ok := backends[url]
		if !ok {
			return nil, errors.New("connection refused")
		}
		return b, nil
	}
}

type addrSigner struct{ addr common.Address }

func (s addrSigner) Address() common.Address { return s.addr }

func (s addrSigner) SignTx(tx *types.Transaction, _ *big.Int) (*types.Transaction, error) {
	return tx, nil
}

func TestAcquireSessionUsesFirstLiveProvider(t *testing.T) {
	dead := newFakeChain()
	dead.netErr = errors.New("timeout")
	live := newFakeChain()
	live.network = "1337"

	s, err := donation.AcquireSession(context.Background(), donation.SessionOptions{
		URLs: []string{"http://missing", "http://dead", "http://live"},
		Dial: dialerFor(map[string]*fakeChain{"http://dead": dead, "http://live": live}),
	})
	require.NoError(t, err)

	assert.Equal(t, "http://live", s.URL)
	assert.Equal(t, "1337", s.NetworkID)
	assert.Equal(t, me, s.Account)
	assert.False(t, s.Sender.LocalSigning())
	assert.Equal(t, 1, dead.closed)
}

func TestAcquireSessionNoProvider(t *testing.T) {
	_, err := donation.AcquireSession(context.Background(), donation.SessionOptions{
		URLs: []string{"http://a", "http://b"},
		Dial: dialerFor(nil),
	})
	require.ErrorIs(t, err, donation.ErrNoProvider)

	var ce *donation.ConnectionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, donation.NoProvider, ce.Kind)
	assert.Equal(t, []string{"http://a", "http://b"}, ce.Tried)
}

func TestAcquireSessionNoAccount(t *testing.T) {
	f := newFakeChain()
	f.accounts = nil

	_, err := donation.AcquireSession(context.Background(), donation.SessionOptions{
		URLs: []string{"http://node"},
		Dial: dialerFor(map[string]*fakeChain{"http://node": f}),
	})
	require.ErrorIs(t, err, donation.ErrNoAccount)
	assert.NotErrorIs(t, err, donation.ErrNoProvider)
	assert.Equal(t, 1, f.closed)
}

func TestAcquireSessionWithSigner(t *testing.T) {
	f := newFakeChain()
	f.accounts = nil
	signer := addrSigner{addr: other}

	s, err := donation.AcquireSession(context.Background(), donation.SessionOptions{
		URLs:   []string{"http://node"},
		Dial:   dialerFor(map[string]*fakeChain{"http://node": f}),
		Signer: signer,
	})
	require.NoError(t, err)
	assert.Equal(t, other, s.Account)
	assert.True(t, s.Sender.LocalSigning())

	s.Close()
	assert.Equal(t, 1, f.closed)
}

func TestAcquireSessionLogsUnderSessionModule(t *testing.T) {
	var buf bytes.Buffer
	_, err := donation.AcquireSession(context.Background(), donation.SessionOptions{
		URLs: []string{"http://live"},
		Dial: dialerFor(map[string]*fakeChain{"http://live": newFakeChain()}),
		Log:  zerolog.New(&buf),
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"module":"session"`)
	assert.Contains(t, buf.String(), "session established")
}
