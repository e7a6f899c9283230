package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/charlesng35/dbnav/internal/catalog"
	"github.com/charlesng35/dbnav/internal/navigation"
	apperrors "github.com/charlesng35/dbnav/pkg/errors"
	"github.com/charlesng35/dbnav/pkg/logger"
	"github.com/charlesng35/dbnav/pkg/metrics"
)

var (
	databaseContainers = []catalog.Kind{
		catalog.KindTables,
		catalog.KindViews,
		catalog.KindFunctions,
		catalog.KindProcedures,
		catalog.KindEvents,
	}
	tableContainers = []catalog.Kind{
		catalog.KindColumns,
		catalog.KindIndexes,
		catalog.KindTriggers,
	}
)

// NavigationService builds the navigation tree for one request.
type NavigationService struct {
	catalog  navigation.Catalog
	settings navigation.Settings
	server   string
	log      *zap.Logger
}

// TreeRequest addresses the branch to expand and the pagination state of
// each level. Paths are encoded (dot-joined base64 segments).
type TreeRequest struct {
	APath     string
	VPath     string
	Pos       int
	Pos2Name  string
	Pos2Value int
	Pos3Name  string
	Pos3Value int
	Search    string
	Search2   string
}

// PresenceRequest asks how many items of Kind exist below the node at APath.
type PresenceRequest struct {
	APath  string
	Kind   catalog.Kind
	Search string
}

// NavigationNode is the rendered form of a tree node.
type NavigationNode struct {
	Name        string           `json:"name"`
	RealName    string           `json:"real_name"`
	Type        string           `json:"type"`
	Kind        string           `json:"kind,omitempty"`
	IsGroup     bool             `json:"is_group"`
	Visible     bool             `json:"visible"`
	APath       string           `json:"apath"`
	APathClean  []string         `json:"apath_clean"`
	VPath       string           `json:"vpath"`
	VPathClean  []string         `json:"vpath_clean"`
	Classes     string           `json:"classes"`
	Icon        string           `json:"icon,omitempty"`
	Expander    string           `json:"expander,omitempty"`
	HasSiblings bool             `json:"has_siblings"`
	NumChildren int              `json:"num_children"`
	Pos2        int              `json:"pos2"`
	Pos3        int              `json:"pos3"`
	Total       *int             `json:"total,omitempty"`
	Children    []NavigationNode `json:"children,omitempty"`
}

// NewNavigationService constructs a navigation service for the server named
// server, answering listings through cat.
func NewNavigationService(cat navigation.Catalog, settings navigation.Settings, server string) (*NavigationService, error) {
	if cat == nil {
		return nil, errors.New("navigation service: catalog is required")
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("navigation service: invalid settings: %w", err)
	}
	server = strings.TrimSpace(server)
	if server == "" {
		server = "server"
	}
	return &NavigationService{
		catalog:  cat,
		settings: settings,
		server:   server,
		log:      logger.WithModule("navigation"),
	}, nil
}

// Settings returns the settings the service builds trees with.
func (s *NavigationService) Settings() navigation.Settings {
	return s.settings
}

// Tree loads the first level of the server, expands the database and table
// named by the request's actual path, groups the result and marks the
// virtual path visible.
func (s *NavigationService) Tree(ctx context.Context, req TreeRequest) (*NavigationNode, error) {
	ctx = ensureContext(ctx)

	apath, err := navigation.DecodePath(req.APath)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid apath")
	}
	vpath, err := navigation.DecodePath(req.VPath)
	if err != nil {
		return nil, apperrors.NewBadRequest("invalid vpath")
	}
	if req.Pos < 0 || req.Pos2Value < 0 || req.Pos3Value < 0 {
		return nil, apperrors.NewBadRequest("pagination offsets must not be negative")
	}

	b := &treeBuild{svc: s, ctx: ctx, req: req, totals: map[*navigation.Node]int{}}
	root := b.server()

	if len(apath) > 1 && apath[0] == root.RealName() {
		if db, ok := root.Child(apath[1], true); ok {
			b.expandDatabase(db, apath[2:])
		}
	}
	if s.settings.GroupingEnabled {
		navigation.Group(root)
	}

	markVisible(root, vpath)

	s.log.Debug("navigation tree built",
		zap.Strings("apath", apath),
		zap.Int("databases", root.NumChildren()),
	)

	dto := b.render(root, vpath)
	metrics.TreeNodes.Observe(float64(b.rendered))
	return &dto, nil
}

// Presence counts the items of a kind below the node addressed by APath:
// the server (one segment), a database (two) or a table (four).
func (s *NavigationService) Presence(ctx context.Context, req PresenceRequest) (int, error) {
	ctx = ensureContext(ctx)

	apath, err := navigation.DecodePath(req.APath)
	if err != nil {
		return 0, apperrors.NewBadRequest("invalid apath")
	}
	if len(apath) == 0 {
		apath = []string{s.server}
	}
	if apath[0] != s.server {
		return 0, apperrors.NewBadRequest("apath does not start at this server")
	}

	b := &treeBuild{svc: s, ctx: ctx, totals: map[*navigation.Node]int{}}
	node := b.root()
	switch len(apath) {
	case 1:
	case 2:
		node = b.database(node, apath[1])
	case 4:
		db := b.database(node, apath[1])
		container := navigation.NewContainer(apath[2], navigation.WithKind(catalog.Kind(apath[2])))
		db.AddChild(container)
		node = b.table(container, apath[3])
	default:
		return 0, apperrors.NewBadRequest("apath must address a server, database or table")
	}
	return node.GetPresence(ctx, req.Kind, req.Search), nil
}

// treeBuild holds the state of one Tree or Presence call.
type treeBuild struct {
	svc    *NavigationService
	ctx    context.Context
	req    TreeRequest
	totals map[*navigation.Node]int

	rendered int
}

func (b *treeBuild) root() *navigation.Node {
	st := b.svc.settings
	return navigation.NewContainer(b.svc.server,
		navigation.WithLoader(navigation.ServerLoader{Catalog: b.svc.catalog, Settings: st}),
		navigation.WithSeparators(1, st.DatabaseGroupSeparators()...),
	)
}

func (b *treeBuild) database(parent *navigation.Node, name string) *navigation.Node {
	db := navigation.NewObject(name,
		navigation.WithKind(catalog.KindDatabases),
		navigation.WithLoader(navigation.DatabaseLoader{Catalog: b.svc.catalog, Settings: b.svc.settings}),
	)
	parent.AddChild(db)
	return db
}

func (b *treeBuild) table(parent *navigation.Node, name string) *navigation.Node {
	tbl := navigation.NewObject(name,
		navigation.WithKind(parent.Kind),
		navigation.WithLoader(navigation.TableLoader{Catalog: b.svc.catalog, Settings: b.svc.settings}),
	)
	parent.AddChild(tbl)
	return tbl
}

func (b *treeBuild) server() *navigation.Node {
	ctx := b.ctx
	root := b.root()
	root.Visible = true

	for _, name := range root.GetData(ctx, catalog.KindDatabases, b.req.Pos, b.req.Search) {
		b.database(root, name)
	}
	b.totals[root] = root.GetPresence(ctx, catalog.KindDatabases, b.req.Search)
	return root
}

// expandDatabase fills the database's containers. rest is the actual path
// below the database: container kind, then table name.
func (b *treeBuild) expandDatabase(db *navigation.Node, rest []string) {
	ctx := b.ctx
	st := b.svc.settings

	for _, kind := range databaseContainers {
		count := db.GetPresence(ctx, kind, b.req.Search2)
		if count == 0 {
			continue
		}

		pos := 0
		if strings.EqualFold(b.req.Pos2Name, string(kind)) {
			pos = b.req.Pos2Value
		}

		container := navigation.NewContainer(string(kind), navigation.WithKind(kind))
		if kind == catalog.KindTables || kind == catalog.KindViews {
			container.Separators = st.TableGroupSeparators()
			container.SeparatorDepth = st.TableLevel
		} else {
			container.SeparatorDepth = 0
		}
		container.Pos2 = pos
		db.AddChild(container)
		b.totals[container] = count

		for _, name := range db.GetData(ctx, kind, pos, b.req.Search2) {
			if kind == catalog.KindTables || kind == catalog.KindViews {
				b.table(container, name)
				continue
			}
			container.AddChild(navigation.NewObject(name, navigation.WithKind(kind)))
		}
	}

	if len(rest) >= 2 {
		if container, ok := db.Child(rest[0], true); ok {
			if tbl, ok := container.Child(rest[1], true); ok {
				b.expandTable(tbl)
			}
		}
	}

	for _, container := range db.Children() {
		navigation.Group(container)
	}
}

func (b *treeBuild) expandTable(tbl *navigation.Node) {
	ctx := b.ctx
	for _, kind := range tableContainers {
		count := tbl.GetPresence(ctx, kind, "")
		if count == 0 {
			continue
		}

		pos := 0
		if strings.EqualFold(b.req.Pos3Name, string(kind)) {
			pos = b.req.Pos3Value
		}

		container := navigation.NewContainer(string(kind), navigation.WithKind(kind))
		container.SeparatorDepth = 0
		container.Pos3 = pos
		tbl.AddChild(container)
		b.totals[container] = count

		for _, name := range tbl.GetData(ctx, kind, pos, "") {
			container.AddChild(navigation.NewObject(name, navigation.WithKind(kind)))
		}
	}
}

func (b *treeBuild) render(n *navigation.Node, vpath []string) NavigationNode {
	b.rendered++
	st := b.svc.settings
	paths := n.Paths()
	matched := hasPrefix(vpath, paths.VirtualClean)

	classes := n.CSSClasses(st, matched)
	if n.Classes != "" {
		classes = strings.TrimSpace(classes + " " + n.Classes)
	}

	dto := NavigationNode{
		Name:        n.Name(),
		RealName:    n.RealName(),
		Type:        n.Type().String(),
		Kind:        string(n.Kind),
		IsGroup:     n.IsGroup(),
		APath:       paths.Actual,
		APathClean:  paths.ActualClean,
		VPath:       paths.Virtual,
		VPathClean:  paths.VirtualClean,
		Classes:     classes,
		Icon:        n.Icon,
		Expander:    n.ExpanderIcon(st, matched),
		HasSiblings: n.HasSiblings(),
		NumChildren: n.NumChildren(),
		Pos2:        n.Pos2,
		Pos3:        n.Pos3,
	}
	if total, ok := b.totals[n]; ok {
		dto.Total = &total
	}
	for _, child := range n.Children() {
		dto.Children = append(dto.Children, b.render(child, vpath))
	}
	dto.Visible = n.Visible
	return dto
}

// markVisible reveals every node along the virtual path.
func markVisible(root *navigation.Node, vpath []string) {
	if len(vpath) == 0 || vpath[0] != root.Name() {
		return
	}
	node := root
	node.Visible = true
	for _, segment := range vpath[1:] {
		child, ok := node.Child(segment, false)
		if !ok {
			return
		}
		child.Visible = true
		node = child
	}
}
