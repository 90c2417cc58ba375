package view

// State is the whole page state. It is a value: every change goes through Reduce.
type State struct {
	Connected bool     `json:"connected"`
	Joined    bool     `json:"joined"`
	Loading   bool     `json:"loading"`
	Count     uint64   `json:"count"`
	Failure   *Failure `json:"failure,omitempty"`
}

type Action interface {
	isAction()
}

type (
	// Connected is dispatched once the wallet handed out a provider on the right network.
	Connected struct{}

	MembershipLoaded struct{ Member bool }

	CountLoaded struct{ Count uint64 }

	// JoinSubmitted starts a join. The controller only dispatches it when CanJoin allows it.
	JoinSubmitted struct{}

	// JoinConfirmed ends a join after the receipt arrived and the count was refreshed.
	JoinConfirmed struct{ Count uint64 }

	JoinFailed struct{ Failure *Failure }

	Failed struct{ Failure *Failure }

	Dismissed struct{}
)

func (Connected) isAction()        {}
func (MembershipLoaded) isAction() {}
func (CountLoaded) isAction()      {}
func (JoinSubmitted) isAction()    {}
func (JoinConfirmed) isAction()    {}
func (JoinFailed) isAction()       {}
func (Failed) isAction()           {}
func (Dismissed) isAction()        {}

func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Connected:
		s.Connected = true
		s.Failure = nil
	case MembershipLoaded:
		s.Joined = s.Joined || a.Member
	case CountLoaded:
		s.Count = a.Count
	case JoinSubmitted:
		s.Loading = true
		s.Failure = nil
	case JoinConfirmed:
		s.Count = a.Count
		s.Joined = true
		s.Loading = false
	case JoinFailed:
		s.Loading = false
		s.Failure = a.Failure
	case Failed:
		s.Failure = a.Failure
	case Dismissed:
		s.Failure = nil
	}

	return s
}

// CanJoin reports why a join may not start from s, nil when it may.
func CanJoin(s State) error {
	switch {
	case !s.Connected:
		return ErrNotConnected
	case s.Joined:
		return ErrAlreadyJoined
	case s.Loading:
		return ErrJoinInFlight
	}

	return nil
}
