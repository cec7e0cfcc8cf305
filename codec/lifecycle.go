package codec

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/igbinary/class"
	"github.com/wippyai/igbinary/errors"
	"github.com/wippyai/igbinary/value"
)

// objectState is the decode-side lifecycle of one object.
//
//	Allocated -> PropertiesAssigned -> Finalized -> Ready
//	Allocated -> CustomParsed -> Ready
//	(any) -> Failed
type objectState uint8

const (
	stateAllocated objectState = iota
	statePropertiesAssigned
	stateCustomParsed
	stateFinalized
	stateReady
	stateFailed
)

func (s objectState) String() string {
	switch s {
	case stateAllocated:
		return "allocated"
	case statePropertiesAssigned:
		return "properties_assigned"
	case stateCustomParsed:
		return "custom_parsed"
	case stateFinalized:
		return "finalized"
	case stateReady:
		return "ready"
	case stateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// lifecycle drives the hooks of one object being decoded.
type lifecycle struct {
	obj   *value.Object
	typ   *class.Type
	state objectState
}

func (lc *lifecycle) transition(to objectState) {
	lc.state = to
}

// propertiesAssigned runs the finalization hook, if any.
func (lc *lifecycle) propertiesAssigned(path []string) error {
	lc.transition(statePropertiesAssigned)
	if lc.typ != nil && lc.typ.Wakeup != nil {
		if err := lc.typ.Wakeup(lc.obj); err != nil {
			lc.transition(stateFailed)
			return errors.HookFailed(errors.PhaseDecode, path, lc.obj.Class, "__wakeup", err)
		}
	}
	lc.transition(stateFinalized)
	return nil
}

// customPayload hands the opaque payload to the class, or keeps it on the
// object when the class cannot parse it.
func (lc *lifecycle) customPayload(path []string, data []byte, log *zap.Logger) error {
	if lc.typ != nil && lc.typ.Unserialize != nil {
		if err := lc.typ.Unserialize(lc.obj, data); err != nil {
			lc.transition(stateFailed)
			return errors.HookFailed(errors.PhaseDecode, path, lc.obj.Class, "unserialize", err)
		}
		lc.transition(stateCustomParsed)
		return nil
	}

	lc.obj.Serialized = append([]byte(nil), data...)
	if lc.typ != nil {
		log.Warn("class has no unserialize hook, keeping serialized payload",
			zap.String("class", lc.obj.Class),
			zap.Int("bytes", len(data)))
	} else {
		log.Warn("keeping serialized payload of unresolved class",
			zap.String("class", lc.obj.Class),
			zap.Int("bytes", len(data)))
	}
	lc.transition(stateCustomParsed)
	return nil
}

// teardown collects objects that reached Ready during one decode call so
// they can be destructed if a later part of the call fails.
type teardown struct {
	log   *zap.Logger
	ready []*lifecycle
}

// register marks lc Ready and keeps it for teardown when its class has a
// destructor. Only finalized or custom-parsed objects can become Ready; any
// other state is left untouched and reported as false.
func (td *teardown) register(lc *lifecycle) bool {
	switch lc.state {
	case stateFinalized, stateCustomParsed:
	default:
		return false
	}
	lc.transition(stateReady)
	if lc.typ != nil && lc.typ.Destruct != nil {
		td.ready = append(td.ready, lc)
	}
	return true
}

// run destructs registered objects in reverse order. A panicking destructor
// is logged and does not stop the others.
func (td *teardown) run() {
	for i := len(td.ready) - 1; i >= 0; i-- {
		td.destruct(td.ready[i])
	}
	td.ready = nil
}

func (td *teardown) destruct(lc *lifecycle) {
	defer func() {
		if r := recover(); r != nil {
			td.log.Error("destructor panicked during teardown",
				zap.String("class", lc.obj.Class),
				zap.Any("panic", r))
		}
	}()
	lc.typ.Destruct(lc.obj)
}
