package loop

import (
	"encoding/json"
	"fmt"

	"github.com/ardenlabs/playrunner/internal/gamestate"
)

func marshalAgent(a gamestate.Agent) (string, error) {
	data, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("loop: marshal agent: %w", err)
	}
	return string(data), nil
}
