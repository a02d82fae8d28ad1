package pipeline

// Args are the values supplied on the command line. A nil field is asked for.
type Args struct {
	// Mode is "network" or "offline".
	Mode    *string
	Network *string
	Sender  *string
	// Receiver is ignored when ReceiverPolicy is ReceiverIsSender.
	Receiver       *string
	ReceiverPolicy AccountPolicy
	Chain          ChainArgs
	Sign           SignArgs
	// Submit is "send" or "display".
	Submit *string
}

// AccountPolicy is what an account id must satisfy online.
type AccountPolicy int

const (
	// MayBeImplicit accepts existing accounts and not yet funded implicit accounts.
	MayBeImplicit AccountPolicy = iota
	MustExist
	MustNotExist
	// ReceiverIsSender skips the receiver step; the transaction acts on the sender's own account.
	ReceiverIsSender
)

// ChainArgs are the actions supplied up front, in order.
type ChainArgs struct {
	Actions []ActionArgs
	// Done goes straight to signing once Actions are used up instead of offering to add more.
	Done bool
}

// ActionArgs hold one action's values. Fields that do not apply to Kind are ignored.
type ActionArgs struct {
	Kind        *string
	Amount      *string
	PublicKey   *string
	Allowance   *string
	Receiver    *string
	MethodNames *string
	Beneficiary *string
	Method      *string
	Args        *string
	Gas         *string
	Deposit     *string
	CodeFile    *string
}

// SignArgs select and feed a sign option.
type SignArgs struct {
	Method    *string
	SecretKey *string
	PublicKey *string
	Nonce     *string
	BlockHash *string
	HDPath    *string
}
