package ircsasl

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/emersion/go-sasl"
	"gopkg.in/irc.v3"
)

// SASL numeric replies handled by the negotiator.
const (
	errNickLocked  = "902"
	rplSASLSuccess = "903"
	errSASLFail    = "904"
	errSASLTooLong = "905"
	errSASLAborted = "906"
	rplSASLAlready = "907"
)

// A MessageWriter sends IRC messages to the server. It is implemented by
// irc.Writer and irc.Conn from gopkg.in/irc.v3.
type MessageWriter interface {
	WriteMessage(m *irc.Message) error
}

// A Logger logs events that have no caller to return an error to, such as a
// write failure while aborting on timeout.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Options configures a Negotiator.
type Options struct {
	// Mechanism selects the SASL mechanism for the whole session.
	Mechanism Mechanism

	// Username and Password are the credentials for MechanismPlain. They
	// are unused by MechanismExternal.
	Username string
	Password string

	// NegotiationFinished is called exactly once when the negotiation
	// concludes, whatever the outcome, so that capability negotiation can
	// proceed past SASL. It is not called when the connection is torn down
	// mid-exchange.
	NegotiationFinished func()

	// Outcome is called exactly once with the terminal result: nil on
	// success (including an already-authenticated connection), an error
	// describing the failure otherwise. Like NegotiationFinished, it is
	// skipped on connection teardown.
	Outcome func(err error)

	// Timeout bounds each wait for a server response. DefaultTimeout is
	// used if zero.
	Timeout time.Duration

	// Scheduler arms the timeout. The default fires on a separate
	// goroutine via time.AfterFunc.
	Scheduler Scheduler

	// Logger, if set, receives diagnostics about terminal failures.
	Logger Logger

	// Raw outgoing commands will be written to this writer, if any.
	DebugWriter io.Writer
}

// A Negotiator drives the SASL negotiation for a single IRC connection.
//
// The host wires its event sources to the negotiator: server lines go to
// HandleMessage (or to the per-event Handle methods), connection teardown to
// Close. Outgoing commands are written to the MessageWriter as each event is
// processed; nothing blocks waiting for the server.
//
// A Negotiator is safe for concurrent use, so the default timer scheduler
// may fire on a separate goroutine. The callbacks in Options are invoked
// synchronously from whichever event triggered them and must not call back
// into the Negotiator.
type Negotiator struct {
	conn    MessageWriter
	options Options

	mutex         sync.Mutex
	state         State
	client        sasl.Client
	initialResp   []byte
	reassembler   Reassembler
	cancelTimeout func()
	timeoutGen    uint64
}

// NewNegotiator creates a negotiator writing to conn.
//
// It fails if the mechanism is unknown, or if it is MechanismPlain and
// either credential is empty. This function doesn't perform I/O.
func NewNegotiator(conn MessageWriter, options *Options) (*Negotiator, error) {
	if options == nil {
		options = &Options{}
	}
	client, err := newSASLClient(options.Mechanism, options.Username, options.Password)
	if err != nil {
		return nil, err
	}

	n := &Negotiator{
		conn:    conn,
		options: *options,
		client:  client,
	}
	if n.options.Timeout <= 0 {
		n.options.Timeout = DefaultTimeout
	}
	if n.options.Scheduler == nil {
		n.options.Scheduler = timerScheduler{}
	}
	return n, nil
}

// State returns the current negotiation state.
func (n *Negotiator) State() State {
	n.mutex.Lock()
	defer n.mutex.Unlock()
	return n.state
}

// HandleMessage routes a server message to the matching event handler. It
// returns true when the message belongs to the SASL negotiation and false
// when the host should process it as usual.
func (n *Negotiator) HandleMessage(msg *irc.Message) (bool, error) {
	switch msg.Command {
	case "AUTHENTICATE":
		// A bare AUTHENTICATE is legal on the wire and equivalent to an
		// empty fragment.
		var fragment string
		if len(msg.Params) > 0 {
			fragment = msg.Params[0]
		}
		return true, n.HandleAuthenticate(fragment)
	case rplSASLSuccess:
		return true, n.HandleSuccess()
	case rplSASLAlready:
		return true, n.HandleAlreadyAuthenticated()
	case errNickLocked, errSASLFail, errSASLTooLong, errSASLAborted:
		return true, n.HandleFailure(msg.Command, failureText(msg))
	}
	return false, nil
}

// failureText extracts the reason from a failure numeric. The first
// parameter is the client's nick; the reason is the trailing parameter.
func failureText(msg *irc.Message) string {
	if len(msg.Params) >= 2 {
		return msg.Trailing()
	}
	return ""
}

// HandleMechanismAck starts the negotiation: it announces the mechanism to
// the server and arms the response timeout. Call it when the server
// acknowledges the sasl capability.
func (n *Negotiator) HandleMechanismAck() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.state != StateIdle {
		return fmt.Errorf("ircsasl: cannot start a negotiation in state %q", n.state)
	}

	mech, initialResp, err := n.client.Start()
	if err != nil {
		return err
	}
	n.initialResp = initialResp

	if err := n.send("AUTHENTICATE", mech); err != nil {
		return err
	}
	n.state = StateStarted
	n.armTimeout()
	return nil
}

// HandleAuthenticate processes one AUTHENTICATE fragment from the server.
//
// Fragments must be delivered in the order they arrived. The returned error
// only reports transport write failures; negotiation failures are delivered
// through the Outcome callback.
func (n *Negotiator) HandleAuthenticate(fragment string) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.state != StateStarted && n.state != StateAwaitingStep {
		// Stray fragment, no negotiation is underway.
		return nil
	}

	// A response is being processed, not awaited.
	n.disarmTimeout()

	payload, done, err := n.reassembler.Feed(fragment)
	if err != nil {
		return n.abort(err)
	}
	if !done {
		// More fragments expected.
		n.state = StateAwaitingStep
		n.armTimeout()
		return nil
	}

	resp, err := n.respond(payload)
	if err != nil {
		return n.abort(err)
	}
	if err := n.sendResponse(resp); err != nil {
		return err
	}
	n.state = StateAwaitingStep
	n.armTimeout()
	return nil
}

// respond builds the raw response to a completed server message. The first
// message of the exchange is the mechanism's (usually empty) initial
// challenge and is answered with the initial response computed at start;
// any further challenge goes to the mechanism itself.
func (n *Negotiator) respond(challenge []byte) ([]byte, error) {
	if n.initialResp != nil {
		resp := n.initialResp
		n.initialResp = nil
		return resp, nil
	}
	return n.client.Next(challenge)
}

// HandleSuccess processes the RPL_SASLSUCCESS (903) numeric.
func (n *Negotiator) HandleSuccess() error {
	return n.handleResult(StateSucceeded)
}

// HandleAlreadyAuthenticated processes the RPL_SASLALREADY (907) numeric.
// The connection is authenticated, so this is a success for all downstream
// purposes.
func (n *Negotiator) HandleAlreadyAuthenticated() error {
	return n.handleResult(StateAlreadyAuthenticated)
}

func (n *Negotiator) handleResult(state State) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.state == StateIdle || n.state.Terminal() {
		return nil
	}
	n.conclude(state, nil)
	return nil
}

// HandleFailure processes one of the SASL failure numerics (902, 904, 905,
// 906). code is the numeric itself and text the server-provided reason, if
// any.
func (n *Negotiator) HandleFailure(code, text string) error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.state == StateIdle || n.state.Terminal() {
		return nil
	}
	if text == "" {
		text = "SASL authentication failed"
	}
	n.conclude(StateFailed, &ServerError{Code: code, Text: text})
	return nil
}

// Close tears the session down after the connection is lost: the pending
// timeout is cancelled and buffered reassembly state is dropped. No outcome
// is reported.
func (n *Negotiator) Close() error {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if n.state.Terminal() {
		return nil
	}
	n.disarmTimeout()
	n.reassembler.Reset()
	n.initialResp = nil
	n.state = StateClosed
	return nil
}

// abort terminates a live exchange on an unrecoverable error: the abort
// token is sent to the server and the failure is reported. The returned
// error only reflects the write.
func (n *Negotiator) abort(err error) error {
	sendErr := n.send("AUTHENTICATE", "*")
	n.conclude(StateFailed, err)
	return sendErr
}

// conclude performs the terminal bookkeeping shared by every outcome. The
// state checks in each handler guarantee it runs at most once per session.
func (n *Negotiator) conclude(state State, err error) {
	n.disarmTimeout()
	n.reassembler.Reset()
	n.initialResp = nil
	n.state = state

	if err != nil && n.options.Logger != nil {
		n.options.Logger.Printf("sasl: negotiation failed: %v", err)
	}
	if n.options.NegotiationFinished != nil {
		n.options.NegotiationFinished()
	}
	if n.options.Outcome != nil {
		n.options.Outcome(err)
	}
}

func (n *Negotiator) armTimeout() {
	n.timeoutGen++
	gen := n.timeoutGen
	n.cancelTimeout = n.options.Scheduler.Schedule(n.options.Timeout, func() {
		n.handleTimeout(gen)
	})
}

func (n *Negotiator) disarmTimeout() {
	if n.cancelTimeout != nil {
		n.cancelTimeout()
		n.cancelTimeout = nil
	}
}

// handleTimeout runs when an armed timeout fires. gen identifies the wait
// the timer was armed for: a timer that fired after being superseded, but
// before its cancel function could stop it, is ignored.
func (n *Negotiator) handleTimeout(gen uint64) {
	n.mutex.Lock()
	defer n.mutex.Unlock()

	if gen != n.timeoutGen || n.state.Terminal() || n.state == StateIdle {
		return
	}
	n.cancelTimeout = nil

	// The authentication timed out, we can't do much beside terminating it.
	if err := n.send("AUTHENTICATE", "*"); err != nil && n.options.Logger != nil {
		n.options.Logger.Printf("sasl: failed to send abort: %v", err)
	}
	n.conclude(StateFailed, ErrTimeout)
}

// sendResponse splits a raw response into AUTHENTICATE commands and sends
// them in order.
func (n *Negotiator) sendResponse(resp []byte) error {
	for _, fragment := range EncodeResponse(resp) {
		if err := n.send("AUTHENTICATE", fragment); err != nil {
			return err
		}
	}
	return nil
}

func (n *Negotiator) send(command string, params ...string) error {
	msg := &irc.Message{Command: command, Params: params}
	if n.options.DebugWriter != nil {
		fmt.Fprintf(n.options.DebugWriter, "%v\r\n", msg)
	}
	return n.conn.WriteMessage(msg)
}
