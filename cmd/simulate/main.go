// Command simulate plays one scripted two-player match against a running
// server, exercising the full challenge -> accept -> answer -> leave flow
// over the real client transports. Useful as a smoke test and as a worked
// example of the quizclient API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"flashfrenzy/backend/internal/models"
	"flashfrenzy/backend/internal/quizclient"
)

var questions = quizclient.QuestionSet{
	"q1": {ID: "q1", Prompt: "2 + 2", Answer: "4", Points: 10},
	"q2": {ID: "q2", Prompt: "Capital of France", Answer: "Paris", Points: 10},
	"q3": {ID: "q3", Prompt: "H2O is", Answer: "water", Points: 10},
}

func main() {
	baseURL := "http://localhost:8080"
	if len(os.Args) > 1 {
		baseURL = os.Args[1]
	}

	tokenA := fetchToken(baseURL, "alice@example.com", "Alice")
	tokenB := fetchToken(baseURL, "bob@example.com", "Bob")

	matchID := createMatch(baseURL, "alice@example.com", "bob@example.com")
	log.Printf("Created match %s", matchID)

	alice := quizclient.New(baseURL, tokenA, "alice@example.com", "Alice")
	bob := quizclient.New(baseURL, tokenB, "bob@example.com", "Bob")

	boardA := quizclient.NewScoreboard(questions)
	boardB := quizclient.NewScoreboard(questions)

	for name, board := range map[string]*quizclient.Scoreboard{"alice": boardA, "bob": boardB} {
		n, b := name, board
		client := alice
		if n == "bob" {
			client = bob
		}
		client.On(models.EventPlayerAnswered, func(ev models.Event) {
			var p models.PlayerAnsweredPayload
			if err := ev.Decode(&p); err != nil {
				return
			}
			applied, correct := b.Apply(p)
			log.Printf("[%s] %s answered %s on %s (applied=%v correct=%v)",
				n, p.UserID, p.Answer, p.QuestionID, applied, correct)
		})
	}

	// Bob accepts whatever challenge arrives.
	bob.On(models.EventChallengeReceived, func(ev models.Event) {
		log.Printf("[bob] challenge received, accepting")
		bob.RespondToChallenge(true)
	})

	// Alice joins the room when told to.
	alice.On(models.EventJoinMatch, func(ev models.Event) {
		var p models.JoinMatchPayload
		if err := ev.Decode(&p); err != nil {
			return
		}
		log.Printf("[alice] joining match %s", p.MatchID)
		alice.JoinMatch(p.MatchID)
	})

	alice.Connect()
	bob.Connect()
	defer alice.Close()
	defer bob.Close()

	time.Sleep(500 * time.Millisecond)
	log.Printf("alice transport: %s, bob transport: %s", alice.ConnectionType(), bob.ConnectionType())

	alice.SendChallenge("bob@example.com", matchID)
	time.Sleep(2 * time.Second)

	// Alice answers everything right, Bob fumbles q2.
	answers := map[string]map[string]string{
		"q1": {"alice": "4", "bob": "4"},
		"q2": {"alice": "Paris", "bob": "London"},
		"q3": {"alice": "water", "bob": "water"},
	}
	for _, qid := range []string{"q1", "q2", "q3"} {
		alice.SendAnswer(matchID, answers[qid]["alice"], qid)
		bob.SendAnswer(matchID, answers[qid]["bob"], qid)
		time.Sleep(500 * time.Millisecond)
	}

	time.Sleep(time.Second)
	alice.LeaveMatch(matchID)
	bob.LeaveMatch(matchID)

	fmt.Println("--- final standings (alice's view) ---")
	for id, ps := range boardA.Standings() {
		fmt.Printf("  %s: %d\n", id, ps.Score)
	}
	if winner, decisive := boardA.Winner(); decisive {
		fmt.Printf("winner: %s\n", winner)
	} else {
		fmt.Println("tie")
	}
}

func fetchToken(baseURL, email, name string) string {
	body, _ := json.Marshal(map[string]string{"email": email, "displayName": name})
	resp, err := http.Post(baseURL+"/auth/token", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("token request failed: %v", err)
	}
	defer resp.Body.Close()

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Fatalf("bad token response: %v", err)
	}
	return out.Token
}

func createMatch(baseURL string, players ...string) string {
	body, _ := json.Marshal(map[string]interface{}{"players": players})
	resp, err := http.Post(baseURL+"/api/match", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("match creation failed: %v", err)
	}
	defer resp.Body.Close()

	var match models.Match
	if err := json.NewDecoder(resp.Body).Decode(&match); err != nil {
		log.Fatalf("bad match response: %v", err)
	}
	return match.MatchID
}
