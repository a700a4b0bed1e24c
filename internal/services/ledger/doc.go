/*
Package ledger owns the wallet aggregate: balances, payment methods,
mobile money accounts and the append-only transaction log. It is the
only package permitted to mutate wallet balances, and every balance
mutation pairs with a logged transaction.

Core rules enforced here:

  - balances and locked balances never go negative
  - a reservation moves funds from balance to lockedBalance and is
    settled exactly once (captured or released) when its transaction
    reaches a terminal state
  - transaction ids are assigned once and never reused
  - status changes follow pending -> processing -> completed/failed/
    cancelled, with completed -> refunded the only terminal edge

Wallet writes go through an optimistic version check with retry, so a
concurrent check-and-reserve on the same wallet cannot double-spend.
*/
package ledger
