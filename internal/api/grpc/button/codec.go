package button

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	domain "github.com/oshokin/async-button/internal/domain/button"
	pb "github.com/oshokin/async-button/internal/pb/v1"
)

// ErrMalformedMessage is returned when a Struct document lacks a required field
// or carries a value of the wrong kind.
var ErrMalformedMessage = errors.New("malformed message")

// ToProtoActor converts a domain actor into a press request document.
func ToProtoActor(actor *domain.Actor) *structpb.Struct {
	if actor == nil {
		return &structpb.Struct{Fields: map[string]*structpb.Value{}}
	}

	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			pb.FieldHostname: structpb.NewStringValue(actor.Hostname),
			pb.FieldUsername: structpb.NewStringValue(actor.Username),
		},
	}
}

// FromProtoActor extracts the actor from a press request. It returns nil when
// the document has neither a hostname nor a username.
func FromProtoActor(msg *structpb.Struct) *domain.Actor {
	fields := msg.GetFields()

	actor := &domain.Actor{
		Hostname: fields[pb.FieldHostname].GetStringValue(),
		Username: fields[pb.FieldUsername].GetStringValue(),
	}

	if actor.Hostname == "" && actor.Username == "" {
		return nil
	}

	return actor
}

// ToProtoSnapshot converts a domain snapshot into its Struct document.
func ToProtoSnapshot(snapshot domain.Snapshot) *structpb.Struct {
	fields := map[string]*structpb.Value{
		pb.FieldState: structpb.NewStringValue(snapshot.State.String()),
		pb.FieldSignals: structpb.NewStructValue(&structpb.Struct{
			Fields: map[string]*structpb.Value{
				pb.FieldIsLoading:          structpb.NewBoolValue(snapshot.Signals.IsLoading),
				pb.FieldContentAlpha:       structpb.NewNumberValue(snapshot.Signals.ContentAlpha),
				pb.FieldAccessibilityLabel: structpb.NewStringValue(snapshot.Signals.AccessibilityLabel),
			},
		}),
	}

	if snapshot.Fetch != nil {
		fields[pb.FieldFetch] = structpb.NewStructValue(toProtoFetch(snapshot.Fetch))
	}

	return &structpb.Struct{Fields: fields}
}

// FromProtoSnapshot converts a Struct document back into a domain snapshot.
func FromProtoSnapshot(msg *structpb.Struct) (domain.Snapshot, error) {
	fields := msg.GetFields()

	stateValue, ok := fields[pb.FieldState]
	if !ok {
		return domain.Snapshot{}, fmt.Errorf("%w: missing %s", ErrMalformedMessage, pb.FieldState)
	}

	state, err := domain.ParseActivityState(stateValue.GetStringValue())
	if err != nil {
		return domain.Snapshot{}, err
	}

	signalsValue, ok := fields[pb.FieldSignals]
	if !ok || signalsValue.GetStructValue() == nil {
		return domain.Snapshot{}, fmt.Errorf("%w: missing %s", ErrMalformedMessage, pb.FieldSignals)
	}

	signals := signalsValue.GetStructValue().GetFields()

	snapshot := domain.Snapshot{
		State: state,
		Signals: domain.Signals{
			IsLoading:          signals[pb.FieldIsLoading].GetBoolValue(),
			ContentAlpha:       signals[pb.FieldContentAlpha].GetNumberValue(),
			AccessibilityLabel: signals[pb.FieldAccessibilityLabel].GetStringValue(),
		},
	}

	if fetchValue := fields[pb.FieldFetch].GetStructValue(); fetchValue != nil {
		fetch, err := fromProtoFetch(fetchValue)
		if err != nil {
			return domain.Snapshot{}, err
		}

		snapshot.Fetch = fetch
	}

	return snapshot, nil
}

// ToProtoPressResult builds the Press response document.
func ToProtoPressResult(accepted bool, snapshot domain.Snapshot) *structpb.Struct {
	return &structpb.Struct{
		Fields: map[string]*structpb.Value{
			pb.FieldAccepted: structpb.NewBoolValue(accepted),
			pb.FieldSnapshot: structpb.NewStructValue(ToProtoSnapshot(snapshot)),
		},
	}
}

// FromProtoPressResult decodes the Press response document.
func FromProtoPressResult(msg *structpb.Struct) (bool, domain.Snapshot, error) {
	fields := msg.GetFields()

	snapshotValue := fields[pb.FieldSnapshot].GetStructValue()
	if snapshotValue == nil {
		return false, domain.Snapshot{}, fmt.Errorf("%w: missing %s", ErrMalformedMessage, pb.FieldSnapshot)
	}

	snapshot, err := FromProtoSnapshot(snapshotValue)
	if err != nil {
		return false, domain.Snapshot{}, err
	}

	return fields[pb.FieldAccepted].GetBoolValue(), snapshot, nil
}

func toProtoFetch(fetch *domain.FetchState) *structpb.Struct {
	fields := map[string]*structpb.Value{
		pb.FieldTimesFetched: structpb.NewNumberValue(float64(fetch.TimesFetched)),
		pb.FieldErrorMessage: structpb.NewStringValue(fetch.ErrorMessage),
	}

	if fetch.ResponseCode != uuid.Nil {
		fields[pb.FieldResponseCode] = structpb.NewStringValue(fetch.ResponseCode.String())
	}

	if fetch.LastActor != nil {
		fields[pb.FieldLastActor] = structpb.NewStructValue(ToProtoActor(fetch.LastActor))
	}

	if !fetch.Timestamp.IsZero() {
		fields[pb.FieldTimestamp] = structpb.NewStringValue(fetch.Timestamp.UTC().Format(time.RFC3339Nano))
	}

	return &structpb.Struct{Fields: fields}
}

func fromProtoFetch(msg *structpb.Struct) (*domain.FetchState, error) {
	fields := msg.GetFields()

	fetch := &domain.FetchState{
		TimesFetched: int(fields[pb.FieldTimesFetched].GetNumberValue()),
		ErrorMessage: fields[pb.FieldErrorMessage].GetStringValue(),
	}

	if raw := fields[pb.FieldResponseCode].GetStringValue(); raw != "" {
		code, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedMessage, pb.FieldResponseCode, err)
		}

		fetch.ResponseCode = code
	}

	if actor := fields[pb.FieldLastActor].GetStructValue(); actor != nil {
		fetch.LastActor = FromProtoActor(actor)
	}

	if raw := fields[pb.FieldTimestamp].GetStringValue(); raw != "" {
		timestamp, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedMessage, pb.FieldTimestamp, err)
		}

		fetch.Timestamp = timestamp
	}

	return fetch, nil
}
