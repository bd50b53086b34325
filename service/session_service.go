package service

import (
	"fmt"
	"log"
	"math/rand"
	"sync"

	"github.com/google/uuid"

	"watch-configurator/models"
)

// SelectionState is one user's current choice of asset per category for the
// product being viewed. Selections commit a stable asset ID rather than a
// positional index, so sub-category filtering can never shift what a click
// meant: a position in the displayed (possibly filtered) list is translated
// to the asset ID at commit time.
type SelectionState struct {
	SessionID  string            `json:"sessionId"`
	ProductKey string            `json:"productKey"`
	Selected   map[string]int    `json:"selected"` // category key → committed asset ID
	Filters    map[string]string `json:"filters"`  // category key → sub-category or "all"
}

// clone returns an independent copy with its own maps
func (st *SelectionState) clone() *SelectionState {
	selected := make(map[string]int, len(st.Selected))
	for key, id := range st.Selected {
		selected[key] = id
	}
	filters := make(map[string]string, len(st.Filters))
	for key, filter := range st.Filters {
		filters[key] = filter
	}
	return &SelectionState{
		SessionID:  st.SessionID,
		ProductKey: st.ProductKey,
		Selected:   selected,
		Filters:    filters,
	}
}

// SessionService owns all live selection sessions. Every view (grid, row,
// modal, composed preview) answers from the same SelectionState, so the
// views cannot disagree about what is selected. Handlers run concurrently:
// the live state never leaves the service — readers get a point-in-time
// copy and every mutation happens under the service lock, like the catalog,
// which consumers also re-fetch instead of caching.
type SessionService struct {
	catalogService *CatalogService

	sessions map[string]*SelectionState
	mutex    sync.RWMutex
}

// NewSessionService creates a new SessionService
func NewSessionService(catalogService *CatalogService) *SessionService {
	return &SessionService{
		catalogService: catalogService,
		sessions:       make(map[string]*SelectionState),
	}
}

// DisplayedAssets returns the asset list a view shows for one category:
// the product's assets pass the render-time leak guard first, then the
// sub-category filter ("all" keeps everything). Filtering narrows what is
// offered for selection — it never changes the composed preview.
func (s *SessionService) DisplayedAssets(productKey, categoryKey, filter string) []models.Asset {
	catalog := s.catalogService.Current()
	product := catalog.Product(productKey)
	if product == nil {
		return nil
	}

	assets := FilterForProduct(product.AssetsFor(categoryKey), productKey)
	if filter == "" || filter == "all" {
		return assets
	}

	narrowed := make([]models.Asset, 0, len(assets))
	for _, asset := range assets {
		if asset.SubCategory == filter {
			narrowed = append(narrowed, asset)
		}
	}
	return narrowed
}

// defaultSelections selects the first asset of every non-empty category and
// leaves empty categories unset, so first paint is predictable
func (s *SessionService) defaultSelections(productKey string) map[string]int {
	selected := make(map[string]int)
	catalog := s.catalogService.Current()
	if catalog == nil {
		return selected
	}
	for _, category := range catalog.Categories {
		assets := s.DisplayedAssets(productKey, category.Key, "all")
		if len(assets) > 0 {
			selected[category.Key] = assets[0].ID
		}
	}
	return selected
}

// CreateSession starts a selection session for a product. The returned state
// is a snapshot; re-fetch with GetSession after mutations.
func (s *SessionService) CreateSession(productKey string) (*SelectionState, error) {
	catalog := s.catalogService.Current()
	if catalog == nil || catalog.Product(productKey) == nil {
		return nil, fmt.Errorf("product %s not found", productKey)
	}

	state := &SelectionState{
		SessionID:  uuid.NewString(),
		ProductKey: productKey,
		Selected:   s.defaultSelections(productKey),
		Filters:    make(map[string]string),
	}

	s.mutex.Lock()
	s.sessions[state.SessionID] = state
	s.mutex.Unlock()

	log.Printf("✓ Created selection session %s for product %s", state.SessionID, productKey)
	return state.clone(), nil
}

// GetSession returns a point-in-time copy of a session's state. The copy is
// safe to read while other handlers commit selections on the same session;
// callers re-fetch after a mutation instead of holding the maps across one.
func (s *SessionService) GetSession(sessionID string) (*SelectionState, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("session %s not found", sessionID)
	}
	return state.clone(), nil
}

// Select commits an asset ID for a category. The asset must belong to the
// session's current product and category.
func (s *SessionService) Select(sessionID, categoryKey string, assetID int) error {
	catalog := s.catalogService.Current()

	s.mutex.Lock()
	defer s.mutex.Unlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}

	product := catalog.Product(state.ProductKey)
	if product == nil {
		return fmt.Errorf("product %s no longer in catalog", state.ProductKey)
	}
	if _, found := product.FindAsset(categoryKey, assetID); !found {
		return fmt.Errorf("asset %d not found in %s/%s", assetID, state.ProductKey, categoryKey)
	}

	state.Selected[categoryKey] = assetID
	return nil
}

// SelectPosition commits the asset at a position within the currently
// displayed (guard- and sub-category-filtered) list for a category. The
// position is translated to a stable asset ID immediately; out-of-range
// positions are rejected, never clamped.
func (s *SessionService) SelectPosition(sessionID, categoryKey string, position int) error {
	state, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}

	assets := s.DisplayedAssets(state.ProductKey, categoryKey, state.Filters[categoryKey])
	if position < 0 || position >= len(assets) {
		return fmt.Errorf("position %d out of range for %s (%d assets displayed)", position, categoryKey, len(assets))
	}
	return s.Select(sessionID, categoryKey, assets[position].ID)
}

// Reset sets every category back to its first asset (or unset when the
// category is empty). Calling it twice yields the same state as calling it
// once.
func (s *SessionService) Reset(sessionID string) error {
	state, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}

	defaults := s.defaultSelections(state.ProductKey)
	s.mutex.Lock()
	if live, ok := s.sessions[sessionID]; ok {
		live.Selected = defaults
	}
	s.mutex.Unlock()
	log.Printf("🔄 Session %s reset to defaults", sessionID)
	return nil
}

// Randomize picks a uniformly random asset for every category that has at
// least one; empty categories are left unset
func (s *SessionService) Randomize(sessionID string) error {
	state, err := s.GetSession(sessionID)
	if err != nil {
		return err
	}

	catalog := s.catalogService.Current()
	selected := make(map[string]int)
	for _, category := range catalog.Categories {
		assets := s.DisplayedAssets(state.ProductKey, category.Key, "all")
		if len(assets) == 0 {
			continue
		}
		selected[category.Key] = assets[rand.Intn(len(assets))].ID
	}

	s.mutex.Lock()
	if live, ok := s.sessions[sessionID]; ok {
		live.Selected = selected
	}
	s.mutex.Unlock()
	log.Printf("🎲 Session %s randomized", sessionID)
	return nil
}

// SetFilter sets the sub-category filter for a category. This narrows what
// the grid and row views offer — the committed selection and the composed
// preview are untouched.
func (s *SessionService) SetFilter(sessionID, categoryKey, filter string) error {
	if filter == "" {
		filter = "all"
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}
	state.Filters[categoryKey] = filter
	return nil
}

// SwitchProduct moves a session to another product. Selection state is fully
// re-initialized from the new product's asset lists — nothing from the old
// product survives the switch.
func (s *SessionService) SwitchProduct(sessionID, productKey string) error {
	catalog := s.catalogService.Current()
	if catalog == nil || catalog.Product(productKey) == nil {
		return fmt.Errorf("product %s not found", productKey)
	}

	defaults := s.defaultSelections(productKey)

	s.mutex.Lock()
	defer s.mutex.Unlock()
	state, ok := s.sessions[sessionID]
	if !ok {
		return fmt.Errorf("session %s not found", sessionID)
	}
	state.ProductKey = productKey
	state.Selected = defaults
	state.Filters = make(map[string]string)

	log.Printf("🔄 Session %s switched to product %s", sessionID, productKey)
	return nil
}

// DropDanglingSelections clears committed asset IDs that no longer resolve
// in the current catalog (e.g., after an admin deleted a selected asset).
// Called after catalog reloads so views degrade to "unset" instead of
// rendering a ghost.
func (s *SessionService) DropDanglingSelections() {
	catalog := s.catalogService.Current()
	if catalog == nil {
		return
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, state := range s.sessions {
		product := catalog.Product(state.ProductKey)
		for categoryKey, assetID := range state.Selected {
			if product == nil {
				delete(state.Selected, categoryKey)
				continue
			}
			if _, ok := product.FindAsset(categoryKey, assetID); !ok {
				log.Printf("⏭️  Dropping dangling selection %d in session %s (%s)", assetID, state.SessionID, categoryKey)
				delete(state.Selected, categoryKey)
			}
		}
	}
}
