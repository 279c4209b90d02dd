package engine

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/citypanic/citypanic/game/grid"
)

// Gameplay constants. These are fixed by the game design, not configuration.
const (
	StartingHealth    = 50.0
	HealthLoopSeconds = 2.0
	MaxPlayers        = 4

	healthCeiling     = 100.0
	deathLimitCeiling = 90.0
	warmupMinSeconds  = 3
)

var (
	ErrGameInProgress    = errors.New("game in progress")
	ErrGameNotInProgress = errors.New("game not in progress")
	ErrGameFull          = errors.New("game is full")
	ErrNotInMatch        = errors.New("client not in match")
	ErrStartConditions   = errors.New("conditions not met for game to start")
	ErrAlreadyDisposing  = errors.New("match is already disposing")
	ErrUUIDAssigned      = errors.New("match uuid cannot be changed")
	ErrCommandNotFound   = errors.New("command not found")
	ErrInvalidValue      = errors.New("invalid value")
)

// Game modifiers: one themed actions widget is planted in every grid each
// level, and every slot but the instruction's source must act on it.
var specialActionNames = []string{
	"Macy's Parade",
	"4th of July Fireworks",
	"Vote",
	"Bagel",
	"A Slice of Pizza",
}

var specialActionVerbs = map[string][]string{
	"Macy's Parade":         {"Attend"},
	"4th of July Fireworks": {"Watch"},
	"Vote":                  {"Submit"},
	"Bagel":                 {"Eat"},
	"A Slice of Pizza":      {"Eat"},
}

func isSpecialActionName(name string) bool {
	for _, n := range specialActionNames {
		if n == name {
			return true
		}
	}
	return false
}

// Deps are the match's external collaborators.
type Deps struct {
	Bus      EventBus
	Registry Registry
	Config   Config
	Names    func(rng *rand.Rand) grid.NameSource
	Rand     *rand.Rand

	// Baseline overrides the level-0 difficulty; zero value means the
	// built-in default.
	Baseline Difficulty
}

// Match owns the slots, the in-flight instruction set, the level/health
// state and every scheduled timer of one game. All exported methods acquire
// the match lock; methods suffixed Locked (and the lower-case internals)
// require it to be held.
type Match struct {
	mu sync.Mutex

	uuid   string
	name   string
	public bool

	maxPlayers int
	slots      []*Slot

	playing   bool
	disposing bool

	instructions []*Instruction

	level      int
	health     float64
	deathLimit float64
	gridSize   int

	difficulty        Difficulty
	vanillaDifficulty Difficulty

	previousGameModifier string
	gameModifier         string
	specialAction        string

	healthDrainTask  *task
	gameModifierTask *task

	bus      EventBus
	registry Registry
	cfg      Config
	newNames func(rng *rand.Rand) grid.NameSource
	rng      *rand.Rand
}

// NewMatch creates a match in the lobby state. The UUID is assigned
// separately (exactly once) by the lobby registry.
func NewMatch(name string, public bool, deps Deps) *Match {
	rng := deps.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	baseline := deps.Baseline
	if baseline.InstructionsTime == 0 {
		baseline = DefaultDifficulty()
	}
	return &Match{
		name:              name,
		public:            public,
		maxPlayers:        2,
		level:             -1,
		health:            StartingHealth,
		difficulty:        baseline,
		vanillaDifficulty: baseline,
		bus:               deps.Bus,
		registry:          deps.Registry,
		cfg:               deps.Config,
		newNames:          deps.Names,
		rng:               rng,
	}
}

// SetUUID assigns the match identity. It can be set only once.
func (m *Match) SetUUID(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.uuid != "" {
		return ErrUUIDAssigned
	}
	m.uuid = id
	return nil
}

func (m *Match) UUID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.uuid
}

func (m *Match) Name() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

func (m *Match) Public() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.public
}

func (m *Match) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing
}

func (m *Match) Level() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.level
}

func (m *Match) Empty() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots) == 0
}

func (m *Match) PlayerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.slots)
}

// LobbyInfo returns the public listing entry for this match.
func (m *Match) LobbyInfo() LobbyInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lobbyInfo()
}

// GameInfo returns the full roster view of this match.
func (m *Match) GameInfo() GameInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gameInfo()
}

func (m *Match) room() string {
	return "game/" + m.uuid
}

func (m *Match) lobbyInfo() LobbyInfo {
	return LobbyInfo{
		Name:       m.name,
		GameID:     m.uuid,
		Players:    len(m.slots),
		MaxPlayers: m.maxPlayers,
		Public:     m.public,
	}
}

func (m *Match) gameInfo() GameInfo {
	info := GameInfo{LobbyInfo: m.lobbyInfo()}
	info.Slots = make([]*SlotInfo, 0, m.maxPlayers)
	for _, s := range m.slots {
		info.Slots = append(info.Slots, s.info())
	}
	for len(info.Slots) < m.maxPlayers {
		info.Slots = append(info.Slots, nil)
	}
	return info
}

func (m *Match) getSlot(c Client) *Slot {
	for _, s := range m.slots {
		if s.Client.UID() == c.UID() {
			return s
		}
	}
	return nil
}

func (m *Match) notifyGame() {
	m.bus.Emit("game_info", m.gameInfo(), m.room())
}

func (m *Match) notifyLobby() {
	if m.public {
		m.bus.Emit("lobby_info", m.lobbyInfo(), LobbyRoom)
	}
}

func (m *Match) notifyLobbyDispose() {
	m.bus.Emit("lobby_disposed", map[string]string{"game_id": m.uuid}, LobbyRoom)
}

func (m *Match) notifyHealth() {
	m.bus.Emit("health_info", HealthInfo{Health: m.health, DeathLimit: m.deathLimit}, m.room())
}

// Join seats a client. The first joiner becomes host; role is the join
// position capped at 3. In single-player mode the match starts immediately.
func (m *Match) Join(c Client) error {
	m.mu.Lock()
	if m.playing {
		m.mu.Unlock()
		return ErrGameInProgress
	}
	if len(m.slots) >= m.maxPlayers {
		m.bus.Emit("game_join_fail", map[string]string{"message": "The game is full"}, c.SID())
		m.mu.Unlock()
		return ErrGameFull
	}

	role := len(m.slots)
	if role > 3 {
		role = 3
	}
	m.slots = append(m.slots, &Slot{Client: c, Host: len(m.slots) == 0, Role: role})

	m.bus.JoinRoom(c.SID(), m.room())
	m.bus.Emit("game_join_success", map[string]string{"game_id": m.uuid}, c.SID())
	m.notifyGame()
	m.notifyLobby()

	log.Printf("engine: %s joined game %s", c.SID(), m.uuid)

	single := m.cfg.SinglePlayer()
	m.mu.Unlock()

	if single {
		return m.Start()
	}
	return nil
}

// Leave unseats a client. During play this tears the whole match down; in
// the lobby it may reassign the host and disposes once the room is empty.
func (m *Match) Leave(c Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var leaving *Slot
	for i, s := range m.slots {
		if s.Client.UID() == c.UID() {
			leaving = s
			m.slots = append(m.slots[:i], m.slots[i+1:]...)
			break
		}
	}
	if leaving == nil {
		return ErrNotInMatch
	}

	m.bus.LeaveRoom(c.SID(), m.room())

	if m.playing && !m.disposing {
		m.bus.Emit("player_disconnected", struct{}{}, m.room())
		if err := m.dispose(); err != nil {
			return err
		}
	} else if !m.playing {
		if leaving.Host && len(m.slots) > 0 {
			newHost := m.slots[m.rng.Intn(len(m.slots))]
			newHost.Host = true
			log.Printf("engine: %s chosen as new host in game %s", newHost.Client.SID(), m.uuid)
		}
		m.notifyGame()
		m.notifyLobby()
		if len(m.slots) == 0 {
			if err := m.dispose(); err != nil {
				return err
			}
		}
	}

	log.Printf("engine: %s left game %s", c.SID(), m.uuid)
	return nil
}

// UpdateSettings changes room size and/or visibility while in the lobby.
func (m *Match) UpdateSettings(size *int, public *bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		return ErrGameInProgress
	}

	visibilityChanged := false
	if size != nil {
		n := *size
		if n < 2 {
			n = 2
		}
		if n < len(m.slots) {
			// Never shrink below the seated players.
			n = len(m.slots)
		}
		if n > MaxPlayers {
			n = MaxPlayers
		}
		m.maxPlayers = n
	}
	if public != nil {
		m.public = *public
		visibilityChanged = true
	}

	m.notifyGame()
	if m.public {
		m.notifyLobby()
	} else if visibilityChanged {
		m.notifyLobbyDispose()
	}
	return nil
}

// Ready toggles the client's ready flag.
func (m *Match) Ready(c Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		return ErrGameInProgress
	}
	slot := m.getSlot(c)
	if slot == nil {
		return ErrNotInMatch
	}
	slot.Ready = !slot.Ready
	m.notifyGame()
	return nil
}

// Start begins play: requires more than one seated player, all ready, unless
// single-player mode is on.
func (m *Match) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		return ErrGameInProgress
	}

	allReady := len(m.slots) > 1
	for _, s := range m.slots {
		if !s.Ready {
			allReady = false
			break
		}
	}
	if !allReady && !m.cfg.SinglePlayer() {
		return ErrStartConditions
	}

	m.playing = true
	m.notifyLobbyDispose()
	m.nextLevel()

	for _, s := range m.slots {
		m.bus.Emit("game_started", map[string]int{"role": s.Role}, s.Client.SID())
	}
	return nil
}

// IntroDone marks the client's intro as played. When the last slot reports
// in, grids are revealed and the instruction loop begins after a warmup.
func (m *Match) IntroDone(c Client) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing {
		return ErrGameNotInProgress
	}
	slot := m.getSlot(c)
	if slot == nil {
		return ErrNotInMatch
	}
	slot.IntroDone = true

	for _, s := range m.slots {
		if !s.IntroDone {
			return nil
		}
	}
	m.introDoneAll()
	return nil
}

func (m *Match) introDoneAll() {
	for _, s := range m.slots {
		m.bus.Emit("grid", s.Grid.Objects, s.Client.SID())
	}

	warmup := int(m.difficulty.InstructionsTime / 5)
	if warmup < warmupMinSeconds {
		warmup = warmupMinSeconds
	}
	m.bus.Emit("command", CommandPayload{
		Text: "Prepare to receive instructions",
		Time: float64(warmup),
	}, m.room())

	m.after(time.Duration(warmup)*time.Second, func() {
		for _, s := range m.slots {
			m.generateInstruction(s, nil, false, nil)
		}
		m.healthDrainTask = m.startHealthDrain()
	})
}

// nextLevel advances the match one level: cancels every timer, resets health
// and the death limit, steps the difficulty, regenerates all grids, plants
// the game-modifier widget and schedules its activation.
func (m *Match) nextLevel() {
	cancelTask(m.healthDrainTask)
	m.healthDrainTask = nil
	cancelTask(m.gameModifierTask)
	m.gameModifierTask = nil
	for _, s := range m.slots {
		cancelTask(s.nextGeneration)
		s.nextGeneration = nil
	}

	m.level++
	if m.level == 0 {
		log.Printf("engine: game %s starting", m.uuid)
	} else {
		log.Printf("engine: game %s advancing to level %d", m.uuid, m.level+1)
	}

	m.health = StartingHealth
	m.deathLimit = 0

	if m.level > 0 {
		d := m.vanillaDifficulty
		for i := 0; i < m.level; i++ {
			d.Advance()
		}
		m.difficulty = d
	}

	for _, s := range m.slots {
		s.IntroDone = false
	}

	size := m.level/2 + 2
	if size > 4 {
		size = 4
	}
	m.gridSize = size

	names := m.newNames(m.rng)
	for _, s := range m.slots {
		s.Grid = grid.Generate(size, size, s.Role, m.level, names, m.rng)
	}

	// Pick this level's game modifier, never repeating the previous one.
	m.previousGameModifier = m.gameModifier
	candidates := make([]string, 0, len(specialActionNames))
	for _, n := range specialActionNames {
		if n != m.previousGameModifier {
			candidates = append(candidates, n)
		}
	}
	modifier := candidates[m.rng.Intn(len(candidates))]
	m.gameModifier = modifier
	verbs := specialActionVerbs[modifier]

	randTime := 10 + 15*m.rng.Float64()
	for _, s := range m.slots {
		objs := s.Grid.Objects
		if len(objs) == 0 {
			continue
		}
		idx := m.rng.Intn(len(objs))
		old := objs[idx]
		widget := grid.NewActions(modifier, old.X, old.Y, old.W, old.H, verbs)
		objs[idx] = widget
		s.nextGeneration = m.scheduleGeneration(s, randTime, nil, true, widget)
	}
}

// generateInstruction issues a fresh instruction to slot and schedules its
// expiry. expired reports the fate of the previous instruction to the
// client; command forces a specific widget (the game modifier path).
func (m *Match) generateInstruction(slot *Slot, expired *bool, stopOldTask bool, command *grid.Widget) {
	if stopOldTask && slot.nextGeneration != nil {
		slot.nextGeneration.Cancel()
	}
	old := slot.Instruction

	target := m.randomOtherSlot(slot)
	special := SpecialNone

	if command != nil {
		m.specialAction = command.Name
	} else {
		m.specialAction = ""
	}

	if command == nil {
		switch {
		case m.rng.Float64() < m.difficulty.AsteroidChance && slot.SpecialCommandCooldown <= 0:
			target = nil
			special = SpecialAsteroid
			slot.SpecialCommandCooldown = m.difficulty.SpecialCommandCooldown + 1
		case m.rng.Float64() < m.difficulty.BlackHoleChance && slot.SpecialCommandCooldown <= 0:
			target = nil
			special = SpecialBlackHole
			slot.SpecialCommandCooldown = m.difficulty.SpecialCommandCooldown + 1
		case m.cfg.SinglePlayer():
			target = slot
		case m.rng.Intn(6) == 0:
			target = slot
		default:
			target = m.randomOtherSlot(slot)
		}
	}

	if slot.SpecialCommandCooldown > 0 {
		slot.SpecialCommandCooldown--
	}

	if command == nil && special == SpecialNone {
		command = m.pickTargetCommand(slot, &target)
	}

	instr := newInstruction(slot, target, command, special, m.specialAction != "", m.rng)
	m.instructions = append(m.instructions, instr)
	slot.Instruction = instr

	m.bus.Emit("command", CommandPayload{
		Text:    instr.Text,
		Time:    m.difficulty.InstructionsTime,
		Expired: expired,
	}, slot.Client.SID())

	if old != nil && old.Special != SpecialNone {
		m.bus.Emit("safe", struct{}{}, m.room())
	}

	slot.nextGeneration = m.scheduleGeneration(slot, m.difficulty.InstructionsTime, boolPtr(true), false, nil)
}

// scheduleGeneration arms the expiry timer: when it fires, the slot's
// current instruction is discarded, the expiry penalty applied and a new
// instruction generated. Cancellation abandons it with no side effects.
func (m *Match) scheduleGeneration(slot *Slot, seconds float64, expired *bool, stopOldTask bool, command *grid.Widget) *task {
	return m.after(time.Duration(seconds*float64(time.Second)), func() {
		m.removeInstruction(slot.Instruction)
		m.health -= m.difficulty.ExpiredCommandHealthDecrease
		m.generateInstruction(slot, expired, stopOldTask, command)
	})
}

func (m *Match) randomOtherSlot(slot *Slot) *Slot {
	others := make([]*Slot, 0, len(m.slots))
	for _, s := range m.slots {
		if s != slot {
			others = append(others, s)
		}
	}
	if len(others) == 0 {
		return slot
	}
	return others[m.rng.Intn(len(others))]
}

// pickTargetCommand chooses a widget on the target's grid, excluding game
// modifier widgets and preferring widgets no other in-flight instruction
// already targets. A target with no eligible widget at all is swapped for
// another slot.
func (m *Match) pickTargetCommand(source *Slot, target **Slot) *grid.Widget {
	inUse := make(map[string]bool, len(m.instructions)+1)
	for _, in := range m.instructions {
		if in.Command != nil {
			inUse[in.Command.Name] = true
		}
	}
	if source.Instruction != nil && source.Instruction.Command != nil {
		inUse[source.Instruction.Command.Name] = true
	}

	order := []*Slot{*target}
	for _, s := range m.slots {
		if s != *target {
			order = append(order, s)
		}
	}

	for _, t := range order {
		var eligible, free []*grid.Widget
		for _, w := range t.Grid.Objects {
			if isSpecialActionName(w.Name) {
				continue
			}
			eligible = append(eligible, w)
			if !inUse[w.Name] {
				free = append(free, w)
			}
		}
		if len(eligible) == 0 {
			continue
		}
		*target = t
		if len(free) > 0 {
			return free[m.rng.Intn(len(free))]
		}
		return eligible[m.rng.Intn(len(eligible))]
	}

	// Every grid is down to modifier widgets only; keep the match alive
	// with whatever the original target has.
	objs := (*target).Grid.Objects
	return objs[m.rng.Intn(len(objs))]
}

func (m *Match) removeInstruction(in *Instruction) {
	if in == nil {
		return
	}
	for i, cur := range m.instructions {
		if cur == in {
			m.instructions = append(m.instructions[:i], m.instructions[i+1:]...)
			return
		}
	}
}

// startHealthDrain runs the two-second drain loop until the match dies or
// the task is cancelled by a level change or dispose.
func (m *Match) startHealthDrain() *task {
	t := newTask()
	go func() {
		ticker := time.NewTicker(time.Duration(HealthLoopSeconds * float64(time.Second)))
		defer ticker.Stop()
		for {
			select {
			case <-t.ctx.Done():
				return
			case <-ticker.C:
			}
			m.mu.Lock()
			if t.cancelled() || m.disposing {
				m.mu.Unlock()
				return
			}
			m.health -= m.difficulty.HealthDrainRate * HealthLoopSeconds
			m.deathLimit = minFloat(deathLimitCeiling, m.deathLimit+m.difficulty.DeathLimitIncreaseRate*HealthLoopSeconds)
			if m.health <= m.deathLimit {
				m.gameOver()
				m.mu.Unlock()
				return
			}
			m.notifyHealth()
			m.mu.Unlock()
		}
	}()
	return t
}

func (m *Match) gameOver() {
	m.bus.Emit("game_over", LevelInfo{Level: m.level}, m.room())
	log.Printf("engine: game %s over at level %d", m.uuid, m.level)

	m.level = -1
	m.health = StartingHealth
	m.deathLimit = 0
	m.healthDrainTask = nil
	m.previousGameModifier = ""
	m.gameModifier = ""
	m.gameModifierTask = nil
	m.difficulty = m.vanillaDifficulty
}

// DoCommand applies a widget manipulation from a client. A manipulation that
// matches an in-flight instruction completes it; anything else just updates
// the widget with no penalty.
func (m *Match) DoCommand(c Client, commandName string, value interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing {
		return ErrGameNotInProgress
	}
	slot := m.getSlot(c)
	if slot == nil {
		return ErrNotInMatch
	}
	command := slot.Grid.Find(commandName)
	if command == nil {
		return ErrCommandNotFound
	}

	normalized, err := normalizeValue(command, value)
	if err != nil {
		return err
	}

	switch {
	case command.Type.IsSliderLike():
		command.Value = normalized.(int)
	case command.Type == grid.TypeSwitch:
		command.Toggled = normalized.(bool)
	}

	var completed *Instruction
	for _, in := range m.instructions {
		if in.Command != nil && in.Command.Name == commandName &&
			in.Value == normalized && !in.Source.HasCompletedSpecialAction {
			completed = in
		}
	}
	if completed == nil {
		// Useless command. No penalty.
		return nil
	}

	m.completeInstruction(completed, true)
	return nil
}

// normalizeValue validates value against the widget variant and returns it
// in canonical form (int for slider-likes, bool for switches, lower-case
// string for actions, nil for buttons).
func normalizeValue(w *grid.Widget, value interface{}) (interface{}, error) {
	switch {
	case w.Type == grid.TypeButton:
		if value != nil {
			return nil, fmt.Errorf("%w: button takes no value", ErrInvalidValue)
		}
		return nil, nil
	case w.Type.IsSliderLike():
		var n int
		switch v := value.(type) {
		case int:
			n = v
		case float64:
			n = int(v)
			if float64(n) != v {
				return nil, fmt.Errorf("%w: value must be an integer", ErrInvalidValue)
			}
		default:
			return nil, fmt.Errorf("%w: value must be an integer", ErrInvalidValue)
		}
		if n < w.Min || n > w.Max {
			return nil, fmt.Errorf("%w: value must be between %d and %d", ErrInvalidValue, w.Min, w.Max)
		}
		return n, nil
	case w.Type == grid.TypeActions:
		s, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: value must be an action", ErrInvalidValue)
		}
		s = strings.ToLower(s)
		if !w.HasAction(s) {
			return nil, fmt.Errorf("%w: value must be a valid action", ErrInvalidValue)
		}
		return s, nil
	case w.Type == grid.TypeSwitch:
		b, ok := value.(bool)
		if !ok {
			return nil, fmt.Errorf("%w: value must be a bool", ErrInvalidValue)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%w: unknown widget type %q", ErrInvalidValue, w.Type)
}

// completeInstruction discharges an instruction. While a special action is
// pending it acts as a barrier over all slots; otherwise it removes the
// instruction, credits health and either advances the level or issues the
// source a fresh instruction.
func (m *Match) completeInstruction(in *Instruction, increaseHealth bool) {
	if m.specialAction != "" {
		for _, s := range m.slots {
			if s == in.Source {
				continue
			}
			if !s.HasCompletedSpecialAction {
				in.Source.HasCompletedSpecialAction = true
				return
			}
		}

		// Barrier released: every other slot already completed.
		for _, s := range m.slots {
			s.HasCompletedSpecialAction = false
		}
		m.instructions = nil
		if increaseHealth {
			m.health += m.difficulty.CompletedInstructionHealthIncrease
		}
		if m.health >= healthCeiling {
			m.nextLevel()
			m.bus.Emit("next_level", LevelInfo{Level: m.level}, m.room())
		} else {
			for _, s := range m.slots {
				m.generateInstruction(s, boolPtr(false), true, nil)
			}
			m.notifyHealth()
		}
		return
	}

	m.removeInstruction(in)
	if increaseHealth {
		m.health += m.difficulty.CompletedInstructionHealthIncrease
	}
	if m.health >= healthCeiling {
		m.nextLevel()
		m.bus.Emit("next_level", LevelInfo{Level: m.level}, m.room())
	} else {
		m.generateInstruction(in.Source, boolPtr(false), true, nil)
		m.notifyHealth()
	}
}

// DefeatSpecial records the client working against the current asteroid or
// black hole. Once every slot is working on it, all matching special
// instructions complete (without a health reward). The caller's flag resets
// after two seconds either way.
func (m *Match) DefeatSpecial(c Client, blackHole bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.playing {
		return ErrGameNotInProgress
	}
	slot := m.getSlot(c)
	if slot == nil {
		return ErrNotInMatch
	}

	if blackHole {
		slot.DefeatingBlackHole = true
	} else {
		slot.DefeatingAsteroid = true
	}

	allDefeating := true
	for _, s := range m.slots {
		if (blackHole && !s.DefeatingBlackHole) || (!blackHole && !s.DefeatingAsteroid) {
			allDefeating = false
			break
		}
	}

	if allDefeating {
		want := SpecialAsteroid
		if blackHole {
			want = SpecialBlackHole
		}
		var done []*Instruction
		for _, in := range m.instructions {
			if in.Special == want {
				done = append(done, in)
			}
		}
		for _, in := range done {
			m.completeInstruction(in, false)
		}
	}

	m.after(2*time.Second, func() {
		if blackHole {
			slot.DefeatingBlackHole = false
		} else {
			slot.DefeatingAsteroid = false
		}
	})
	return nil
}

// Dispose tears the match down: cancels every timer, evicts the remaining
// clients from the room and removes the match from the lobby registry.
func (m *Match) Dispose() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dispose()
}

func (m *Match) dispose() error {
	if m.disposing {
		return ErrAlreadyDisposing
	}
	m.disposing = true

	for _, s := range m.slots {
		cancelTask(s.nextGeneration)
	}
	cancelTask(m.healthDrainTask)
	cancelTask(m.gameModifierTask)

	uids := make([]string, 0, len(m.slots))
	for _, s := range m.slots {
		m.bus.LeaveRoom(s.Client.SID(), m.room())
		uids = append(uids, s.Client.UID())
	}

	m.registry.RemoveGame(m.uuid, uids)
	log.Printf("engine: match %s disposed", m.uuid)
	return nil
}

func boolPtr(b bool) *bool {
	return &b
}
