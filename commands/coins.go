package commands

import (
	"context"
	"fmt"
)

// BalanceSource reads a viewer's coin balance.
type BalanceSource interface {
	Balance(ctx context.Context, name string) (int, error)
}

// Coins implements "!coins", replying with the sender's balance.
type Coins struct {
	Store BalanceSource
}

func (c *Coins) Name() string  { return "coins" }
func (c *Coins) Usage() string { return "coins" }

func (c *Coins) Execute(ctx context.Context, sender string, _ Args, sink Sink) error {
	balance, err := c.Store.Balance(ctx, sender)
	if err != nil {
		return fmt.Errorf("read balance for %s: %w", sender, err)
	}
	sink.SendMessage(fmt.Sprintf("%s, you have %d coins.", sender, balance))
	return nil
}
