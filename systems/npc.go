// Package systems holds the NPC AI: wander for the sister, wander/chase for demons.
package systems

import (
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whiteout/components"
	"github.com/pthm-cable/whiteout/config"
	"github.com/pthm-cable/whiteout/motion"
)

// NPCs owns the agent entities of one round.
// Each round gets a fresh world; entities are never removed mid-round.
type NPCs struct {
	world *ecs.World

	sisterMapper *ecs.Map4[components.Position, components.Heading, components.Wander, components.Agent]
	demonMapper  *ecs.Map5[components.Position, components.Heading, components.Wander, components.Chase, components.Agent]
	agentFilter  *ecs.Filter2[components.Position, components.Agent]

	posMap    *ecs.Map1[components.Position]
	headMap   *ecs.Map1[components.Heading]
	wanderMap *ecs.Map1[components.Wander]
	chaseMap  *ecs.Map1[components.Chase]
	agentMap  *ecs.Map1[components.Agent]

	sister ecs.Entity
	demons []ecs.Entity

	chaser Chaser
	rng    *rand.Rand
}

// NewNPCs creates an empty NPC set.
func NewNPCs(chase config.ChaseConfig, rng *rand.Rand) *NPCs {
	world := ecs.NewWorld()
	mode, _ := ParseBlendMode(chase.BlendMode)
	return &NPCs{
		world: world,
		sisterMapper: ecs.NewMap4[
			components.Position, components.Heading, components.Wander, components.Agent,
		](world),
		demonMapper: ecs.NewMap5[
			components.Position, components.Heading, components.Wander, components.Chase, components.Agent,
		](world),
		agentFilter: ecs.NewFilter2[components.Position, components.Agent](world),
		posMap:      ecs.NewMap1[components.Position](world),
		headMap:     ecs.NewMap1[components.Heading](world),
		wanderMap:   ecs.NewMap1[components.Wander](world),
		chaseMap:    ecs.NewMap1[components.Chase](world),
		agentMap:    ecs.NewMap1[components.Agent](world),
		chaser:      Chaser{Mode: mode, Rate: chase.BlendRate},
		rng:         rng,
	}
}

func newWander(cfg config.WanderConfig, now time.Time, rng *rand.Rand) components.Wander {
	return components.Wander{
		Direction:    motion.RandomHorizontal(rng),
		LastRedirect: now,
		Interval:     cfg.RedirectEvery(),
		Speed:        cfg.Speed,
		Boundary:     cfg.Boundary,
	}
}

// SpawnSister creates the sister at pos.
func (n *NPCs) SpawnSister(pos r3.Vec, cfg config.WanderConfig, now time.Time) ecs.Entity {
	p := components.Position{}
	p.Set(pos)
	w := newWander(cfg, now, n.rng)
	h := components.Heading{}
	Face(&h, w.Direction)
	a := components.Agent{ID: -1, Kind: components.KindSister}
	n.sister = n.sisterMapper.NewEntity(&p, &h, &w, &a)
	return n.sister
}

// SpawnDemon creates the next demon at pos. IDs are assigned in spawn order from 0.
func (n *NPCs) SpawnDemon(pos r3.Vec, wcfg config.WanderConfig, ccfg config.ChaseConfig, now time.Time) ecs.Entity {
	p := components.Position{}
	p.Set(pos)
	w := newWander(wcfg, now, n.rng)
	h := components.Heading{}
	Face(&h, w.Direction)
	c := components.Chase{Range: ccfg.Distance, Speed: ccfg.Speed, Blend: ccfg.Blend}
	a := components.Agent{ID: len(n.demons), Kind: components.KindDemon}
	e := n.demonMapper.NewEntity(&p, &h, &w, &c, &a)
	n.demons = append(n.demons, e)
	return e
}

// Step advances the sister, then each live demon in id order.
func (n *NPCs) Step(player r3.Vec, now time.Time, dt float64) {
	if n.world.Alive(n.sister) {
		pos, head, w, _ := n.sisterMapper.Get(n.sister)
		UpdateWander(pos, head, w, now, dt, n.rng)
	}
	for _, e := range n.demons {
		pos, head, w, ch, a := n.demonMapper.Get(e)
		if a.Killed {
			continue
		}
		n.chaser.UpdateDemon(pos, head, w, ch, player, now, dt, n.rng)
	}
}

// SisterPosition returns the sister's position.
func (n *NPCs) SisterPosition() r3.Vec {
	return n.posMap.Get(n.sister).Vec()
}

// SisterHeading returns the sister's yaw.
func (n *NPCs) SisterHeading() float64 {
	return n.headMap.Get(n.sister).Yaw
}

// DemonCount returns the size of the demon pool, killed included.
func (n *NPCs) DemonCount() int { return len(n.demons) }

// DemonPosition returns demon id's position.
func (n *NPCs) DemonPosition(id int) r3.Vec {
	return n.posMap.Get(n.demons[id]).Vec()
}

// DemonHeading returns demon id's yaw.
func (n *NPCs) DemonHeading(id int) float64 {
	return n.headMap.Get(n.demons[id]).Yaw
}

// DemonMode returns the mode demon id chose on its last tick.
func (n *NPCs) DemonMode(id int) components.Mode {
	return n.chaseMap.Get(n.demons[id]).Mode
}

// Killed reports whether demon id has been killed.
func (n *NPCs) Killed(id int) bool {
	return n.agentMap.Get(n.demons[id]).Killed
}

// Kill marks demon id as killed. It stays in place but no longer moves or
// takes part in proximity checks. Reports false if it was already dead.
func (n *NPCs) Kill(id int) bool {
	a := n.agentMap.Get(n.demons[id])
	if a.Killed {
		return false
	}
	a.Killed = true
	return true
}

// SetDirection overrides an NPC's wander direction. Used by scenario tests
// and replays to pin behavior.
func (n *NPCs) SetDirection(e ecs.Entity, dir r3.Vec) {
	n.wanderMap.Get(e).Direction = motion.Normalize(dir)
}

// Sister returns the sister entity.
func (n *NPCs) Sister() ecs.Entity { return n.sister }

// Demon returns the entity for demon id.
func (n *NPCs) Demon(id int) ecs.Entity { return n.demons[id] }

// SetPosition teleports an NPC.
func (n *NPCs) SetPosition(e ecs.Entity, pos r3.Vec) {
	n.posMap.Get(e).Set(pos)
}

// LiveDemons returns the positions of demons that are not killed, indexed
// by id. Killed slots are reported with ok=false.
func (n *NPCs) LiveDemons() (positions []r3.Vec, ok []bool) {
	positions = make([]r3.Vec, len(n.demons))
	ok = make([]bool, len(n.demons))
	query := n.agentFilter.Query()
	for query.Next() {
		pos, a := query.Get()
		if a.Kind != components.KindDemon || a.Killed {
			continue
		}
		positions[a.ID] = pos.Vec()
		ok[a.ID] = true
	}
	return positions, ok
}
