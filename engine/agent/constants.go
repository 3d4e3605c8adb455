package agent

import "fmt"

const (
	// StateSize is the length of the feature vector produced by Encode.
	StateSize = 13
	// NumAbstractActions is the size of the policy's output layer.
	NumAbstractActions = 6

	// maxRank normalizes card ranks into [0, 1].
	maxRank = 5
)

// AbstractAction is the coarse action space a learned policy scores. Each one
// is mapped onto a concrete engine action depending on the phase and the
// drawn card.
type AbstractAction uint8

const (
	AbstractCabo     AbstractAction = iota // 0: declare the end
	AbstractPeek                           // 1: use a Reveal card
	AbstractSwap                           // 2: use an Exchange card
	AbstractSwapPos1                       // 3: place the drawn card at position 0
	AbstractSwapPos2                       // 4: place the drawn card at position 1
	AbstractDiscard                        // 5: discard the drawn card
)

var abstractNames = [NumAbstractActions]string{"cabo", "peek", "swap", "swap_pos_1", "swap_pos_2", "discard"}

func (a AbstractAction) String() string {
	if int(a) < NumAbstractActions {
		return abstractNames[a]
	}
	return fmt.Sprintf("abstract(%d)", uint8(a))
}

// Feature offsets within the encoded state.
const (
	featOwnSlots   = 0  // 2 × (rank/5, known flag)
	featOwnAvg     = 4  // mean of known own ranks / 5
	featOppSlots   = 5  // 2 × (rank/5, known flag)
	featOppAvg     = 9  // mean of known opponent ranks / 5
	featDeckFrac   = 10 // deck remaining / deck size
	featCaboCalled = 11
	featCaboIsSelf = 12
)
