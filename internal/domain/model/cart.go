package model

// Scope tags used by cart lines and voucher scopes.
const (
	ScopeTotal   = "total"
	ScopePackage = "package"
	ScopeAddon   = "addon"
)

// CartLine is one priced row of a checkout request. It is computed per request
// and never persisted on its own.
type CartLine struct {
	ScopeTag  string
	RefID     string // package or addon id
	Duration  Duration
	UnitPrice int64 // minor units
	Quantity  int64
}

func (l CartLine) LineTotal() int64 { return l.UnitPrice * l.Quantity }

// CartTotal sums every line total.
func CartTotal(lines []CartLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.LineTotal()
	}
	return sum
}
