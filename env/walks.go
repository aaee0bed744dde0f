package env

import "github.com/CodeStranger-Fred/policyeval/mdp"

const third = 1.0 / 3

// Walk actions.
const (
	Left mdp.Action = iota
	Right
)

// Frozen lake actions.
const (
	LakeLeft mdp.Action = iota
	LakeDown
	LakeRight
	LakeUp
)

var (
	walkActions = []string{"left", "right"}
	lakeActions = []string{"left", "down", "right", "up"}
)

func to(p float64, next mdp.State, reward float64, terminal bool) mdp.Transition {
	return mdp.Transition{Probability: p, NextState: next, Reward: reward, IsTerminal: terminal}
}

// absorbing links a terminal state to itself under every one of n actions.
func absorbing(s mdp.State, n int) map[mdp.Action][]mdp.Transition {
	entries := make(map[mdp.Action][]mdp.Transition, n)
	for a := 0; a < n; a++ {
		entries[mdp.Action(a)] = []mdp.Transition{to(1, s, 0, true)}
	}
	return entries
}

// BanditWalk has a single decision state between two terminal states; going right pays 1.
func BanditWalk() (*Environment, error) {
	return NewEnvironment("bw", 1, 1, 3, walkActions, mdp.Table{
		0: absorbing(0, 2),
		1: {
			Left:  {to(1, 0, 0, true)},
			Right: {to(1, 2, 1, true)},
		},
		2: absorbing(2, 2),
	})
}

// BanditSlipperyWalk is BanditWalk where every action slips the other way 20% of the time.
func BanditSlipperyWalk() (*Environment, error) {
	return NewEnvironment("bsw", 1, 1, 3, walkActions, mdp.Table{
		0: absorbing(0, 2),
		1: {
			Left:  {to(0.8, 0, 0, true), to(0.2, 2, 1, true)},
			Right: {to(0.8, 2, 1, true), to(0.2, 0, 0, true)},
		},
		2: absorbing(2, 2),
	})
}

// SlipperyWalkFive is a five cell corridor between a hole (0) and a goal (6). Moves succeed half
// of the time, stay put a third of the time, and go backwards otherwise.
func SlipperyWalkFive() (*Environment, error) {
	table := mdp.Table{
		0: absorbing(0, 2),
		6: absorbing(6, 2),
	}
	for s := mdp.State(1); s <= 5; s++ {
		table[s] = map[mdp.Action][]mdp.Transition{
			Left:  {walkStep(0.5, s-1), walkStep(0.33, s), walkStep(0.17, s+1)},
			Right: {walkStep(0.5, s+1), walkStep(0.33, s), walkStep(0.17, s-1)},
		}
	}
	return NewEnvironment("swf", 3, 1, 7, walkActions, table)
}

func walkStep(p float64, next mdp.State) mdp.Transition {
	switch next {
	case 0:
		return to(p, next, 0, true)
	case 6:
		return to(p, next, 1, true)
	}
	return to(p, next, 0, false)
}

// FrozenLake is the slippery 4x4 lake: S F F F / F H F H / F F F H / H F F G.
// Every move goes the intended way a third of the time and sideways otherwise.
func FrozenLake() (*Environment, error) {
	return NewEnvironment("fl", 0, 4, 4, lakeActions, mdp.Table{
		0: {
			0: {to(2*third, 0, 0, false), to(third, 4, 0, false)},
			1: {to(third, 4, 0, false), to(third, 0, 0, false), to(third, 1, 0, false)},
			2: {to(third, 1, 0, false), to(third, 0, 0, false), to(third, 4, 0, false)},
			3: {to(2*third, 0, 0, false), to(third, 1, 0, false)},
		},
		1: {
			0: {to(third, 0, 0, false), to(third, 1, 0, false), to(third, 5, 0, true)},
			1: {to(third, 5, 0, true), to(third, 0, 0, false), to(third, 2, 0, false)},
			2: {to(third, 2, 0, false), to(third, 1, 0, false), to(third, 5, 0, true)},
			3: {to(third, 1, 0, false), to(third, 0, 0, false), to(third, 2, 0, false)},
		},
		2: {
			0: {to(third, 1, 0, false), to(third, 2, 0, false), to(third, 6, 0, false)},
			1: {to(third, 6, 0, false), to(third, 1, 0, false), to(third, 3, 0, false)},
			2: {to(third, 3, 0, false), to(third, 2, 0, false), to(third, 6, 0, false)},
			3: {to(third, 2, 0, false), to(third, 1, 0, false), to(third, 3, 0, false)},
		},
		3: {
			0: {to(third, 2, 0, false), to(third, 3, 0, false), to(third, 7, 0, true)},
			1: {to(third, 7, 0, true), to(third, 2, 0, false), to(third, 3, 0, false)},
			2: {to(2*third, 3, 0, false), to(third, 7, 0, true)},
			3: {to(2*third, 3, 0, false), to(third, 2, 0, false)},
		},
		4: {
			0: {to(third, 4, 0, false), to(third, 0, 0, false), to(third, 8, 0, false)},
			1: {to(third, 8, 0, false), to(third, 4, 0, false), to(third, 5, 0, true)},
			2: {to(third, 5, 0, true), to(third, 0, 0, false), to(third, 8, 0, false)},
			3: {to(third, 0, 0, false), to(third, 4, 0, false), to(third, 5, 0, true)},
		},
		5: absorbing(5, 4),
		6: {
			0: {to(third, 5, 0, true), to(third, 2, 0, false), to(third, 10, 0, false)},
			1: {to(third, 10, 0, false), to(third, 5, 0, true), to(third, 7, 0, true)},
			2: {to(third, 7, 0, true), to(third, 2, 0, false), to(third, 10, 0, false)},
			3: {to(third, 2, 0, false), to(third, 5, 0, true), to(third, 7, 0, true)},
		},
		7: absorbing(7, 4),
		8: {
			0: {to(third, 8, 0, false), to(third, 4, 0, false), to(third, 12, 0, true)},
			1: {to(third, 12, 0, true), to(third, 8, 0, false), to(third, 9, 0, false)},
			2: {to(third, 9, 0, false), to(third, 4, 0, false), to(third, 12, 0, true)},
			3: {to(third, 4, 0, false), to(third, 8, 0, false), to(third, 9, 0, false)},
		},
		9: {
			0: {to(third, 8, 0, false), to(third, 5, 0, true), to(third, 13, 0, false)},
			1: {to(third, 13, 0, false), to(third, 8, 0, false), to(third, 10, 0, false)},
			2: {to(third, 10, 0, false), to(third, 5, 0, true), to(third, 13, 0, false)},
			3: {to(third, 5, 0, true), to(third, 8, 0, false), to(third, 10, 0, false)},
		},
		10: {
			0: {to(third, 9, 0, false), to(third, 6, 0, false), to(third, 14, 0, false)},
			1: {to(third, 14, 0, false), to(third, 9, 0, false), to(third, 11, 0, true)},
			2: {to(third, 11, 0, true), to(third, 6, 0, false), to(third, 14, 0, false)},
			3: {to(third, 6, 0, false), to(third, 9, 0, false), to(third, 11, 0, true)},
		},
		11: absorbing(11, 4),
		12: absorbing(12, 4),
		13: {
			0: {to(third, 12, 0, true), to(third, 9, 0, false), to(third, 13, 0, false)},
			1: {to(third, 13, 0, false), to(third, 12, 0, true), to(third, 14, 0, false)},
			2: {to(third, 14, 0, false), to(third, 9, 0, false), to(third, 13, 0, false)},
			3: {to(third, 9, 0, false), to(third, 12, 0, true), to(third, 14, 0, false)},
		},
		14: {
			0: {to(third, 13, 0, false), to(third, 10, 0, false), to(third, 14, 0, false)},
			1: {to(third, 14, 0, false), to(third, 13, 0, false), to(third, 15, 1, true)},
			2: {to(third, 15, 1, true), to(third, 10, 0, false), to(third, 14, 0, false)},
			3: {to(third, 10, 0, false), to(third, 13, 0, false), to(third, 15, 1, true)},
		},
		15: absorbing(15, 4),
	})
}
