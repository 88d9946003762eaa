package keybind

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/dshills/keycmd/internal/command"
	"github.com/dshills/keycmd/internal/input/key"
	"github.com/dshills/keycmd/internal/notify"
	"github.com/dshills/keycmd/internal/prefs"
)

// PrefKey is the preference holding the serialized bindings.
const PrefKey = "keybindings"

// PrefRemovedKey is the preference holding default bindings the user
// removed. Such defaults are not installed again.
const PrefRemovedKey = "keybindings_removed"

// Manager owns the binding table.
//
// Thread Safety:
// Manager is safe for concurrent use. Store writes are serialized and
// happen outside the table lock.
type Manager struct {
	mu       sync.RWMutex
	bindings map[string]*Binding // canonical keys -> binding
	tree     *prefixTree
	removed  map[string]Binding // command + "\x00" + keys -> removed default

	persistMu sync.Mutex
	store     prefs.Store

	notifier *notify.Notifier
	log      *logrus.Entry
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore sets the preference store bindings are written through to.
func WithStore(s prefs.Store) Option {
	return func(m *Manager) { m.store = s }
}

// WithNotifier sets the notifier for binding changes.
func WithNotifier(n *notify.Notifier) Option {
	return func(m *Manager) { m.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(m *Manager) { m.log = log }
}

// NewManager creates an empty binding manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		bindings: make(map[string]*Binding),
		tree:     newPrefixTree(),
		removed:  make(map[string]Binding),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.notifier == nil {
		m.notifier = notify.New()
	}
	if m.log == nil {
		l := logrus.New()
		l.SetLevel(logrus.WarnLevel)
		m.log = logrus.NewEntry(l)
	}
	m.log = m.log.WithField("component", "keybind")
	return m
}

// Subscribe registers an observer for binding changes. The returned
// subscription is the disposer.
func (m *Manager) Subscribe(observer notify.Observer) *notify.Subscription {
	return m.notifier.SubscribeTopic(notify.TopicBinding, observer)
}

func parse(keys string) (*key.Sequence, error) {
	seq, err := key.ParseSequence(keys)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidSequence, keys, err)
	}
	return seq, nil
}

// Assign binds keys to command. If the sequence belongs to a different
// command the assignment fails with ErrSequenceInUse unless force is set,
// in which case the previous owner loses the sequence.
func (m *Manager) Assign(cmd, keys string, force bool) error {
	return m.AssignWithParam(cmd, "", keys, force)
}

// AssignWithParam is Assign with a command parameter.
func (m *Manager) AssignWithParam(cmd, param, keys string, force bool) error {
	if !command.ValidName(cmd) {
		return fmt.Errorf("%w: %q", ErrInvalidCommand, cmd)
	}
	seq, err := parse(keys)
	if err != nil {
		return err
	}
	canonical := seq.String()

	m.mu.Lock()
	prev, exists := m.bindings[canonical]
	if exists {
		if prev.Command == cmd && prev.Param == param {
			m.mu.Unlock()
			return nil
		}
		if prev.Command != cmd && !force {
			m.mu.Unlock()
			return fmt.Errorf("%w: %s is bound to %s", ErrSequenceInUse, canonical, prev.Command)
		}
		m.tree.remove(prev.Sequence)
	}
	b := &Binding{Keys: canonical, Command: cmd, Param: param, Sequence: seq}
	m.bindings[canonical] = b
	m.tree.insert(b)
	delete(m.removed, removedKey(cmd, canonical))
	m.mu.Unlock()

	if exists && prev.Command != cmd {
		m.log.WithFields(logrus.Fields{"keys": canonical, "from": prev.Command, "to": cmd}).Info("binding reassigned")
		m.notify(notify.KindRemoved, canonical, prev.Command)
	}
	m.notify(notify.KindAdded, canonical, cmd)
	m.persist()
	return nil
}

// AddBinding binds keys to command and reports the outcome as a boolean.
// Refusals and errors are logged.
func (m *Manager) AddBinding(cmd, keys string, force bool) bool {
	return m.AddBindingWithParam(cmd, "", keys, force)
}

// AddBindingWithParam is AddBinding with a command parameter.
func (m *Manager) AddBindingWithParam(cmd, param, keys string, force bool) bool {
	if err := m.AssignWithParam(cmd, param, keys, force); err != nil {
		entry := m.log.WithFields(logrus.Fields{"command": cmd, "keys": keys})
		if errors.Is(err, ErrSequenceInUse) {
			entry.WithError(err).Info("binding refused")
		} else {
			entry.WithError(err).Warn("binding failed")
		}
		return false
	}
	return true
}

// AddDefaultBinding installs a default binding requested by a command at
// registration. A default the user removed stays removed and counts as
// handled. It reports false when the sequence belongs to another command.
func (m *Manager) AddDefaultBinding(cmd, keys string) bool {
	if seq, err := parse(keys); err == nil {
		m.mu.RLock()
		_, suppressed := m.removed[removedKey(cmd, seq.String())]
		m.mu.RUnlock()
		if suppressed {
			m.log.WithFields(logrus.Fields{"command": cmd, "keys": seq.String()}).Debug("default binding removed by user")
			return true
		}
	}
	return m.AddBinding(cmd, keys, false)
}

// RemoveBinding removes every sequence bound to command and returns how
// many were removed.
func (m *Manager) RemoveBinding(cmd string) int {
	return m.removeCommand(cmd, false)
}

// Unbind is RemoveBinding on behalf of the user: the removed sequences are
// remembered so AddDefaultBinding does not restore them.
func (m *Manager) Unbind(cmd string) int {
	return m.removeCommand(cmd, true)
}

func (m *Manager) removeCommand(cmd string, remember bool) int {
	m.mu.Lock()
	var removed []string
	for keys, b := range m.bindings {
		if b.Command == cmd {
			m.tree.remove(b.Sequence)
			delete(m.bindings, keys)
			removed = append(removed, keys)
			if remember {
				m.removed[removedKey(cmd, keys)] = Binding{Keys: keys, Command: cmd}
			}
		}
	}
	m.mu.Unlock()

	if len(removed) == 0 {
		return 0
	}
	sort.Strings(removed)
	for _, keys := range removed {
		m.notify(notify.KindRemoved, keys, cmd)
	}
	m.persist()
	return len(removed)
}

// RemoveSequence removes the binding for an exact sequence.
func (m *Manager) RemoveSequence(keys string) bool {
	return m.removeSequence(keys, false)
}

// UnbindSequence is RemoveSequence on behalf of the user; see Unbind.
func (m *Manager) UnbindSequence(keys string) bool {
	return m.removeSequence(keys, true)
}

func (m *Manager) removeSequence(keys string, remember bool) bool {
	seq, err := parse(keys)
	if err != nil {
		return false
	}
	canonical := seq.String()

	m.mu.Lock()
	b, ok := m.bindings[canonical]
	if ok {
		m.tree.remove(b.Sequence)
		delete(m.bindings, canonical)
		if remember {
			m.removed[removedKey(b.Command, canonical)] = Binding{Keys: canonical, Command: b.Command}
		}
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.notify(notify.KindRemoved, canonical, b.Command)
	m.persist()
	return true
}

// Removed returns the default bindings the user removed, sorted by keys.
func (m *Manager) Removed() []Binding {
	m.mu.RLock()
	out := make([]Binding, 0, len(m.removed))
	for _, b := range m.removed {
		out = append(out, b)
	}
	m.mu.RUnlock()
	sortBindings(out)
	return out
}

func removedKey(cmd, keys string) string {
	return cmd + "\x00" + keys
}

// UsedBy returns the commands bound to the exact sequence. An unparsable
// or unbound sequence yields an empty result.
func (m *Manager) UsedBy(keys string) []string {
	seq, err := parse(keys)
	if err != nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if b, ok := m.bindings[seq.String()]; ok {
		return []string{b.Command}
	}
	return nil
}

// Conflicts returns bindings that shadow or are shadowed by keys: bound
// strict prefixes of keys and bound sequences that extend keys.
func (m *Manager) Conflicts(keys string) []Binding {
	seq, err := parse(keys)
	if err != nil {
		return nil
	}

	m.mu.RLock()
	node, prefixes := m.tree.find(seq)
	found := prefixes
	if node != nil {
		found = node.below(found)
	}
	out := make([]Binding, len(found))
	for i, b := range found {
		out[i] = b.clone()
	}
	m.mu.RUnlock()

	sortBindings(out)
	return out
}

// Lookup resolves a sequence typed so far.
func (m *Manager) Lookup(seq *key.Sequence) (Binding, Match) {
	if seq.IsEmpty() {
		return Binding{}, MatchNone
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	node, _ := m.tree.find(seq)
	switch {
	case node == nil:
		return Binding{}, MatchNone
	case node.binding != nil:
		return node.binding.clone(), MatchExact
	case len(node.children) > 0:
		return Binding{}, MatchPrefix
	default:
		return Binding{}, MatchNone
	}
}

// BindingsFor returns the bindings of a command sorted by keys.
func (m *Manager) BindingsFor(cmd string) []Binding {
	m.mu.RLock()
	var out []Binding
	for _, b := range m.bindings {
		if b.Command == cmd {
			out = append(out, b.clone())
		}
	}
	m.mu.RUnlock()
	sortBindings(out)
	return out
}

// All returns every binding sorted by keys.
func (m *Manager) All() []Binding {
	m.mu.RLock()
	out := make([]Binding, 0, len(m.bindings))
	for _, b := range m.bindings {
		out = append(out, b.clone())
	}
	m.mu.RUnlock()
	sortBindings(out)
	return out
}

// Len returns the number of bindings.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.bindings)
}

// Load replaces the table with the bindings persisted in the store. A
// missing preference leaves the current table untouched. Malformed entries
// are logged and skipped.
func (m *Manager) Load() error {
	if m.store == nil || !m.store.Has(PrefKey) {
		return nil
	}
	doc, err := m.store.GetString(PrefKey)
	if err != nil {
		return fmt.Errorf("loading key bindings: %w", err)
	}
	entries, err := decodeBindings(doc)
	if err != nil {
		return fmt.Errorf("loading key bindings: %w", err)
	}

	table := make(map[string]*Binding, len(entries))
	tree := newPrefixTree()
	for _, e := range entries {
		if !command.ValidName(e.Command) {
			m.log.WithField("command", e.Command).Warn("skipping stored binding with invalid command")
			continue
		}
		seq, err := parse(e.Keys)
		if err != nil {
			m.log.WithError(err).Warn("skipping stored binding")
			continue
		}
		b := &Binding{Keys: seq.String(), Command: e.Command, Param: e.Param, Sequence: seq}
		if old, dup := table[b.Keys]; dup {
			m.log.WithFields(logrus.Fields{"keys": b.Keys, "kept": old.Command, "dropped": b.Command}).
				Warn("duplicate stored binding")
			continue
		}
		table[b.Keys] = b
		tree.insert(b)
	}

	removed := m.loadRemoved()

	m.mu.Lock()
	m.bindings = table
	m.tree = tree
	m.removed = removed
	m.mu.Unlock()

	m.notifier.Notify(notify.Change{Topic: notify.TopicBinding, Kind: notify.KindReload, Source: "keybind"})
	m.log.WithField("count", len(table)).Debug("key bindings loaded")
	return nil
}

// loadRemoved reads the removed defaults. A bad document is logged and
// treated as empty.
func (m *Manager) loadRemoved() map[string]Binding {
	removed := make(map[string]Binding)
	if !m.store.Has(PrefRemovedKey) {
		return removed
	}
	doc, err := m.store.GetString(PrefRemovedKey)
	var entries []storedBinding
	if err == nil {
		entries, err = decodeBindings(doc)
	}
	if err != nil {
		m.log.WithError(err).Warn("ignoring removed default bindings")
		return removed
	}
	for _, e := range entries {
		seq, err := parse(e.Keys)
		if err != nil {
			continue
		}
		removed[removedKey(e.Command, seq.String())] = Binding{Keys: seq.String(), Command: e.Command}
	}
	return removed
}

func (m *Manager) notify(kind notify.Kind, keys, cmd string) {
	m.notifier.Notify(notify.Change{
		Topic:   notify.TopicBinding,
		Kind:    kind,
		Subject: keys,
		Detail:  cmd,
		Source:  "keybind",
	})
}

// persist writes the table through to the store. Failures are logged.
func (m *Manager) persist() {
	if m.store == nil {
		return
	}
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	doc, err := encodeBindings(m.All())
	if err == nil {
		err = m.store.SetString(PrefKey, doc)
	}
	if err != nil {
		m.log.WithError(err).Error("saving key bindings")
	}

	removed := m.Removed()
	if len(removed) == 0 && !m.store.Has(PrefRemovedKey) {
		return
	}
	doc, err = encodeBindings(removed)
	if err == nil {
		err = m.store.SetString(PrefRemovedKey, doc)
	}
	if err != nil {
		m.log.WithError(err).Error("saving removed default bindings")
	}
}

func sortBindings(bs []Binding) {
	sort.Slice(bs, func(i, j int) bool {
		if bs[i].Keys != bs[j].Keys {
			return bs[i].Keys < bs[j].Keys
		}
		return bs[i].Command < bs[j].Command
	})
}
