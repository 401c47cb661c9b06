package ratchet

import (
	"parley/internal/crypto"
	"parley/internal/domain"
)

// Labels for the two outputs of a chain step. A chain key only ever feeds
// these two derivations, so the old value is useless once advanced past.
const (
	labelMessageKey = 0x01
	labelChainKey   = 0x02
)

// advanceChain performs one symmetric ratchet step: it derives the message
// key for the current position and the chain key for the next one. The input
// chain key must be discarded by the caller after this returns.
func advanceChain(ck domain.ChainKey) (domain.ChainKey, domain.MessageKey) {
	mk := domain.MessageKey(crypto.DeriveKey(ck.Slice(), labelMessageKey))
	next := domain.ChainKey(crypto.DeriveKey(ck.Slice(), labelChainKey))
	return next, mk
}
