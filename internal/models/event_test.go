package models_test

import (
	"encoding/json"
	"testing"

	"flashfrenzy/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestEvent_EnvelopeRoundTrip(t *testing.T) {
	ev := models.NewEvent(models.EventJoinMatch, models.JoinMatchPayload{
		MatchID: "M1",
		UserID:  "a@x.com",
	})

	raw, err := json.Marshal(ev)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"event":"join-match","data":{"matchId":"M1","userId":"a@x.com"}}`, string(raw))

	var decoded models.Event
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, models.EventJoinMatch, decoded.Name)

	var p models.JoinMatchPayload
	assert.NoError(t, decoded.Decode(&p))
	assert.Equal(t, "M1", p.MatchID)
	assert.Equal(t, "a@x.com", p.UserID)
}

func TestAnswerPayload_EmptyAnswerIsLegal(t *testing.T) {
	// A blank answer is how clients report that the question timer ran out.
	p := models.AnswerPayload{MatchID: "M1", UserID: "a@x.com", Answer: "", QuestionID: "q1"}
	assert.NoError(t, p.Validate())
}

func TestPayloadValidation_RequiredFields(t *testing.T) {
	cases := []struct {
		name    string
		payload interface{ Validate() error }
		ok      bool
	}{
		{"join-user-room complete", models.JoinUserRoomPayload{UserID: "a@x.com"}, true},
		{"join-user-room blank identity", models.JoinUserRoomPayload{}, false},
		{"join-match missing match", models.JoinMatchPayload{UserID: "a@x.com"}, false},
		{"answer missing question", models.AnswerPayload{MatchID: "M1", UserID: "a@x.com", Answer: "4"}, false},
		{"challenge complete", models.ChallengePlayerPayload{ChallengerID: "a@x.com", TargetID: "b@x.com", MatchID: "M1"}, true},
		{"challenge missing target", models.ChallengePlayerPayload{ChallengerID: "a@x.com", MatchID: "M1"}, false},
		{"response declined still valid", models.ChallengeResponsePayload{ChallengerID: "a@x.com", TargetID: "b@x.com", MatchID: "M1", Accepted: false}, true},
		{"response missing challenger", models.ChallengeResponsePayload{TargetID: "b@x.com", MatchID: "M1"}, false},
		{"leave-match missing user", models.LeaveMatchPayload{MatchID: "M1"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.payload.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, models.ErrMissingField)
			}
		})
	}
}
