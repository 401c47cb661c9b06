package ratchet

import (
	"github.com/fxamacker/cbor/v2"

	"parley/internal/domain"
)

// stateVersion guards the serialized layout.
const stateVersion = 1

type skippedEntry struct {
	Pub domain.X25519Public `cbor:"pub"`
	N   uint32              `cbor:"n"`
	Key domain.MessageKey   `cbor:"key"`
}

// sessionState is the serialized form of a Session. Eviction order of the
// skipped-key store is preserved by slice order.
type sessionState struct {
	Version    int                  `cbor:"v"`
	Root       domain.RootKey       `cbor:"root"`
	LocalPriv  domain.X25519Private `cbor:"priv"`
	LocalPub   domain.X25519Public  `cbor:"pub"`
	RemotePub  domain.X25519Public  `cbor:"peer"`
	HaveRemote bool                 `cbor:"have_peer"`
	SendCK     domain.ChainKey      `cbor:"send_ck"`
	HaveSend   bool                 `cbor:"have_send"`
	RecvCK     domain.ChainKey      `cbor:"recv_ck"`
	HaveRecv   bool                 `cbor:"have_recv"`
	SendN      uint32               `cbor:"ns"`
	RecvN      uint32               `cbor:"nr"`
	PrevN      uint32               `cbor:"pn"`
	MaxSkip    uint32               `cbor:"max_skip"`
	PerKeyCap  int                  `cbor:"skip_per_key"`
	TotalCap   int                  `cbor:"skip_total"`
	Skipped    []skippedEntry       `cbor:"skipped,omitempty"`
}

// MarshalBinary serializes the session for persistence. The blob contains raw
// key material; callers are responsible for storing it safely.
func (s *Session) MarshalBinary() ([]byte, error) {
	st := sessionState{
		Version:    stateVersion,
		Root:       s.root,
		LocalPriv:  s.localPriv,
		LocalPub:   s.localPub,
		RemotePub:  s.remotePub,
		HaveRemote: s.haveRemote,
		SendCK:     s.sendCK,
		HaveSend:   s.haveSend,
		RecvCK:     s.recvCK,
		HaveRecv:   s.haveRecv,
		SendN:      s.sendN,
		RecvN:      s.recvN,
		PrevN:      s.prevN,
		MaxSkip:    s.maxSkip,
		PerKeyCap:  s.skipped.perKeyCap,
		TotalCap:   s.skipped.totalCap,
	}
	for _, ref := range s.skipped.order {
		st.Skipped = append(st.Skipped, skippedEntry{
			Pub: ref.pub,
			N:   ref.n,
			Key: s.skipped.keys[ref],
		})
	}
	return cbor.Marshal(st)
}

// UnmarshalBinary restores a session serialized by MarshalBinary.
func (s *Session) UnmarshalBinary(b []byte) error {
	var st sessionState
	if err := cbor.Unmarshal(b, &st); err != nil {
		return ErrBadState
	}
	if st.Version != stateVersion || st.MaxSkip == 0 ||
		st.PerKeyCap <= 0 || st.TotalCap <= 0 {
		return ErrBadState
	}
	s.root = st.Root
	s.localPriv = st.LocalPriv
	s.localPub = st.LocalPub
	s.remotePub = st.RemotePub
	s.haveRemote = st.HaveRemote
	s.sendCK = st.SendCK
	s.haveSend = st.HaveSend
	s.recvCK = st.RecvCK
	s.haveRecv = st.HaveRecv
	s.sendN = st.SendN
	s.recvN = st.RecvN
	s.prevN = st.PrevN
	s.maxSkip = st.MaxSkip
	s.skipped = newSkippedKeys(st.PerKeyCap, st.TotalCap)
	for _, e := range st.Skipped {
		s.skipped.put(e.Pub, e.N, e.Key)
	}
	return nil
}
