package ast

// Block is a sequence of statements sharing a scope.
type Block struct {
	Base
	Stmts []Statement
}

func (*Block) stmtNode() {}

// LetStmt introduces a name. Forward: bind Name to Value (or 0 if Value is
// nil). Reverse: check Name currently equals Value (or 0), then remove it —
// this is the "reverse of let is unlet" symmetry from spec.md §4.4.
type LetStmt struct {
	Base
	Name  string
	Value Expression // nil => implicit 0
}

func (*LetStmt) stmtNode() {}

// UnletStmt destroys a name. Forward: check Name currently equals Value (or
// 0), then remove it. Reverse: bind Name to Value (or 0).
type UnletStmt struct {
	Base
	Name  string
	Value Expression // nil => implicit 0
}

func (*UnletStmt) stmtNode() {}

// PushStmt is `push x => s`: forward moves x onto stack s (removing x from
// scope); reverse pops the tail of s back into a freshly introduced x.
type PushStmt struct {
	Base
	Name  string
	Stack *Lookup
}

func (*PushStmt) stmtNode() {}

// PopStmt is `pop x <= s`: forward pops the tail of s into a freshly
// introduced x; reverse pushes x back onto s.
type PopStmt struct {
	Base
	Name  string
	Stack *Lookup
}

func (*PopStmt) stmtNode() {}

// SwapStmt exchanges the values of two storage locations. Self-inverse.
type SwapStmt struct {
	Base
	A *Lookup
	B *Lookup
}

func (*SwapStmt) stmtNode() {}

// PromoteStmt moves a monodirectional name out into a tracked name,
// transferring its value. Reverse does the opposite transfer.
type PromoteStmt struct {
	Base
	From string // monodirectional, must start with '.'
	To   string // bidirectional
}

func (*PromoteStmt) stmtNode() {}

// Modop operator tokens used by ModOpStmt.Op. Bitwise &= and |= are
// intentionally excluded: see DESIGN.md for why they are not reversible
// modops in this implementation.
const (
	ModAdd = "+="
	ModSub = "-="
	ModMul = "*="
	ModDiv = "/="
	ModXor = "^=" // bitwise XOR, self-inverse
)

// ModOpStmt is `lookup OP= expr`. Forward applies OP; reverse applies OP's
// inverse (+=/-= swap, *=// swap, ^= is its own inverse).
type ModOpStmt struct {
	Base
	Target *Lookup
	Op     string
	Value  Expression
}

func (*ModOpStmt) stmtNode() {}

// IfStmt is `if(Cond) Then else Else fi(Post)`. Post may be nil, meaning
// "defaults to Cond" (spec.md §9 Open Question (a)).
type IfStmt struct {
	Base
	Cond Expression
	Then []Statement
	Else []Statement
	Post Expression // nil => same expression as Cond
}

func (*IfStmt) stmtNode() {}

// LoopStmt is `loop(Entry) Body pool(Exit)`.
type LoopStmt struct {
	Base
	Entry Expression
	Body  []Statement
	Exit  Expression
}

func (*LoopStmt) stmtNode() {}

// ForStmt is `for(Var in Range) Body rof`. Var is bound fresh per iteration
// and destroyed at loop exit.
type ForStmt struct {
	Base
	Var   string
	Range *ArrayRange
	Body  []Statement
}

func (*ForStmt) stmtNode() {}

// BarrierStmt is `barrier "Name"`, a full rendezvous of every thread using
// that name. Self-inverse.
type BarrierStmt struct {
	Base
	Name string
}

func (*BarrierStmt) stmtNode() {}

// MutexStmt is `mutex "Name" Body xetum`. Forward runs Body under the named
// lock; reverse runs the reversed Body under the same lock.
type MutexStmt struct {
	Base
	Name string
	Body []Statement
}

func (*MutexStmt) stmtNode() {}

// DoYieldUndoStmt is `do Do yield Yield undo`. Do is a reversible preamble;
// Yield is the monodirectional visible-effect region. Forward runs Do, then
// Yield, then Do reversed. Reverse runs Do, then Yield reversed, then Do
// reversed.
type DoYieldUndoStmt struct {
	Base
	Do    []Statement
	Yield []Statement
}

func (*DoYieldUndoStmt) stmtNode() {}

// TryStmt is `try(Var in Range) Body yrt`: search Range for a value of Var
// that makes some enclosed CatchStmt's condition true. Body's lets are
// rolled back between failed candidates.
type TryStmt struct {
	Base
	Var   string
	Range *ArrayRange
	Body  []Statement
}

func (*TryStmt) stmtNode() {}

// CatchStmt, only meaningful nested in a TryStmt's Body: if Cond evaluates
// true for the current candidate, the enclosing try commits.
type CatchStmt struct {
	Base
	Cond Expression
}

func (*CatchStmt) stmtNode() {}

// CallStmt is `call`/`uncall` of a (possibly module-qualified) function.
// Args are bound by alias to the callee's borrow list; Outs are bound by
// alias to the callee's in-out list. Threads is nil for a single-threaded
// call, or an expression for the parallel form `call f{N}(...)`.
type CallStmt struct {
	Base
	Uncall  bool
	Module  string // "" if unqualified
	Func    string
	Threads Expression
	Args    []string
	Outs    []string
}

func (*CallStmt) stmtNode() {}

// PrintArg is one element of a print/println argument list: either a raw
// string literal or an expression to evaluate. String literals are purely
// syntactic — the value model has no string type (spec.md §3).
type PrintArg struct {
	Str  *string
	Expr Expression
}

// PrintStmt is `print`/`println` with a mixed argument list.
type PrintStmt struct {
	Base
	Newline bool
	Args    []PrintArg
}

func (*PrintStmt) stmtNode() {}
