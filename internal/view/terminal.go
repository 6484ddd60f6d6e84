package view

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/shopspring/decimal"

	"zolta-live/internal/domain"
	"zolta-live/pkg/money"
)

// TerminalView renders one auction to a terminal. It holds no auction
// logic; the sync controller decides what changes, this type decides how a
// change looks on screen.
type TerminalView struct {
	mu              sync.Mutex
	out             io.Writer
	clock           clockwork.Clock
	overlayDuration time.Duration
	biddingClosed   bool
}

func NewTerminalView(out io.Writer, clock clockwork.Clock, overlayDuration time.Duration) *TerminalView {
	return &TerminalView{
		out:             out,
		clock:           clock,
		overlayDuration: overlayDuration,
	}
}

func (v *TerminalView) SetPrice(price decimal.Decimal) {
	v.printf("Huidig bod: %s\n", money.FormatEUR(price))
}

func (v *TerminalView) PulsePrice() {
	// The web view plays a 500ms highlight; a bell is the terminal
	// equivalent.
	v.printf("\a")
}

func (v *TerminalView) SetMinimumBid(min decimal.Decimal) {
	v.printf("Minimum bod: %s\n", money.FormatEUR(min))
}

func (v *TerminalView) SetBidCount(count int) {
	v.printf("Aantal biedingen: %d\n", count)
}

func (v *TerminalView) RenderBids(bids []domain.BidRecord) {
	v.mu.Lock()
	defer v.mu.Unlock()

	fmt.Fprintln(v.out, "Recente biedingen:")
	for i, b := range bids {
		marker := "  "
		if i == 0 {
			marker = "* " // leading bid
		}
		fmt.Fprintf(v.out, "  %s%-20s %s  %s\n",
			marker, b.Name, b.CreatedAt.Local().Format("02-01-2006 15:04"), money.FormatEUR(b.Amount))
	}
}

func (v *TerminalView) ShowNoBids() {
	v.printf("Nog geen biedingen.\n")
}

func (v *TerminalView) SetCountdown(remaining domain.Breakdown) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.biddingClosed {
		// The terminal notice already replaced the countdown line.
		return
	}
	if remaining.Ended {
		fmt.Fprint(v.out, "\rVeiling afgelopen\n")
		return
	}
	fmt.Fprintf(v.out, "\rNog %d dagen %02d:%02d:%02d",
		remaining.Days, remaining.Hours, remaining.Minutes, remaining.Seconds)
}

func (v *TerminalView) DisableBidding(notice string) {
	v.mu.Lock()
	v.biddingClosed = true
	v.mu.Unlock()
	v.printf("\n%s\n", notice)
}

func (v *TerminalView) ShowWinnerOverlay(name string, amount decimal.Decimal) {
	v.printf("\n========================================\n")
	v.printf("  Gewonnen door %s met %s\n", name, money.FormatEUR(amount))
	v.printf("========================================\n")

	// Auto-dismiss: the overlay leaves the screen, the shown-flag in the
	// controller stays set.
	v.clock.AfterFunc(v.overlayDuration, func() {
		v.printf("\n")
	})
}

func (v *TerminalView) ShowMessage(level domain.MessageLevel, text string) {
	v.printf("[%s] %s\n", level, text)
}

func (v *TerminalView) SetSubmitEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	// The watcher has no interactive bid form; kept for interface parity
	// with embedding UIs.
	_ = enabled
}

func (v *TerminalView) printf(format string, args ...interface{}) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, format, args...)
}
