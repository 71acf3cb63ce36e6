package substrate

import (
	"context"
	"math/big"

	"github.com/ChainSafe/log15"
	"github.com/chainx-org/CrossHarness/chains/chainset"
	utils "github.com/chainx-org/CrossHarness/shared/substrate"
)

var TestLogLevel = log15.LvlTrace
var AliceTestLogger = newTestLogger("Alice")

func newTestLogger(name string) log15.Logger {
	tLog := log15.Root().New("chain", name)
	tLog.SetHandler(log15.LvlFilterHandler(TestLogLevel, tLog.GetHandler()))
	return tLog
}

type submittedCall struct {
	method utils.Method
	args   []interface{}
}

// recordingSubmitter records calls instead of sending them.
type recordingSubmitter struct {
	calls []submittedCall
	err   error
}

func (r *recordingSubmitter) SubmitAndWatch(ctx context.Context, method utils.Method, args ...interface{}) (chainset.Inclusion, error) {
	r.calls = append(r.calls, submittedCall{method: method, args: args})
	if r.err != nil {
		return chainset.Inclusion{}, r.err
	}
	return chainset.Inclusion{BlockNum: uint64(len(r.calls)), Events: []string{utils.ExtrinsicSuccess}}, nil
}

func (r *recordingSubmitter) last() submittedCall {
	return r.calls[len(r.calls)-1]
}

func u128(v int64) *big.Int {
	return big.NewInt(v)
}
