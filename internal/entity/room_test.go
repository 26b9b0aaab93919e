package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/gameverse-backend/internal/apperror"
)

func TestRoom_Membership(t *testing.T) {
	t.Run("FreeSymbol returns the vacated seat", func(t *testing.T) {
		// Given: a room where only O is seated
		room := &Room{Players: []*Player{{Participant: Participant{ConnID: "b"}, Symbol: PlayerO}}}

		// When: asking for the free symbol
		symbol := room.FreeSymbol()

		// Then: X is handed out
		assert.Equal(t, PlayerX, symbol)
	})

	t.Run("Remove player and spectator empties the room", func(t *testing.T) {
		// Given: a room with one player and one spectator
		room := &Room{
			Players:    []*Player{{Participant: Participant{ConnID: "a"}, Symbol: PlayerX}},
			Spectators: []*Spectator{{Participant: Participant{ConnID: "s"}}},
		}
		require.True(t, room.IsMember("a"))
		require.True(t, room.IsMember("s"))

		// When: both leave
		require.NotNil(t, room.RemovePlayer("a"))
		require.NotNil(t, room.RemoveSpectator("s"))

		// Then: nobody is left
		assert.True(t, room.IsEmpty())
		assert.False(t, room.IsMember("a"))
		assert.Nil(t, room.RemoveSpectator("s"))
	})

	t.Run("ConnIDs lists players before spectators", func(t *testing.T) {
		room := &Room{
			Players:    []*Player{{Participant: Participant{ConnID: "a"}}, {Participant: Participant{ConnID: "b"}}},
			Spectators: []*Spectator{{Participant: Participant{ConnID: "s"}}},
		}

		assert.Equal(t, []string{"a", "b", "s"}, room.ConnIDs())
	})
}

func TestParseGameType(t *testing.T) {
	t.Run("Known names", func(t *testing.T) {
		for _, name := range []string{"tic-tac-toe", "connect-four", "memory"} {
			gameType, err := ParseGameType(name)
			require.NoError(t, err)
			assert.Equal(t, GameType(name), gameType)
		}
	})

	t.Run("Checkers is an alias of memory", func(t *testing.T) {
		gameType, err := ParseGameType("checkers")
		require.NoError(t, err)
		assert.Equal(t, GameMemory, gameType)
	})

	t.Run("Unknown name", func(t *testing.T) {
		_, err := ParseGameType("chess")
		assert.ErrorIs(t, err, apperror.ErrUnknownGameType)
	})
}

func TestStats_Level(t *testing.T) {
	assert.Equal(t, 1, Stats{}.Level())
	assert.Equal(t, 3, Stats{Wins: 5, Losses: 5}.Level())
	assert.Equal(t, 10, Stats{Wins: 25, Losses: 15}.Level())
	assert.Equal(t, 50, Stats{Wins: 1000}.Level())
}

func TestGameState_Clone(t *testing.T) {
	// Given: a memory snapshot
	state := GameState{
		Board:   []string{"a", "a"},
		Matched: []bool{false, false},
		Flipped: []int{0},
		Scores:  map[string]int{PlayerX: 0, PlayerO: 0},
	}

	// When: the clone is mutated
	clone := state.Clone()
	clone.Board[0] = "b"
	clone.Matched[0] = true
	clone.Flipped[0] = 1
	clone.Scores[PlayerX] = 3

	// Then: the source state is untouched
	assert.Equal(t, "a", state.Board[0])
	assert.False(t, state.Matched[0])
	assert.Equal(t, 0, state.Flipped[0])
	assert.Equal(t, 0, state.Scores[PlayerX])
}
