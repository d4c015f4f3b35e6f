package project

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dstanek/workgraph/internal/domain/graph"
	"github.com/dstanek/workgraph/internal/domain/task"
	"github.com/dstanek/workgraph/internal/repository"
)

// TaskNode is a task with its direct subtasks. The hierarchy view nests
// tasks exactly two levels deep.
type TaskNode struct {
	Task     task.Task   `json:"task"`
	Subtasks []task.Task `json:"subtasks,omitempty"`
}

// Node is one project in a hierarchy view. A project is fully expanded the
// first time the traversal reaches it; any later reach from a different path
// yields a reference-only node (Expanded false, identity fields only), which
// keeps diamond-shaped hierarchies from blowing up the payload.
type Node struct {
	Ref      Ref        `json:"ref"`
	Expanded bool       `json:"expanded"`
	Project  *Project   `json:"project,omitempty"`
	Tasks    []TaskNode `json:"tasks,omitempty"`
	Children []Node     `json:"children,omitempty"`
}

// View is the full expansion of a hierarchy around a root project:
// descendants as a tree of Nodes, ancestors as flat references.
type View struct {
	Root      Node  `json:"root"`
	Ancestors []Ref `json:"ancestors,omitempty"`
}

// Hierarchy materializes the hierarchy view for a root project. The
// transitive closure of related projects is computed in one pass over the
// full edge set; only edges between related projects are traversed.
func (s *Service) Hierarchy(ctx context.Context, rootID string) (*View, error) {
	root, err := s.projects.Get(ctx, rootID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("loading root project: %w", err)
	}

	relations, err := s.projects.ListRelations(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading relations: %w", err)
	}
	edges := make([]graph.Edge, 0, len(relations))
	for _, rel := range relations {
		edges = append(edges, graph.Edge{From: rel.ParentID, To: rel.ChildID})
	}
	related := graph.RelatedSet(edges, rootID)

	children := map[string][]string{}
	reversed := make([]graph.Edge, 0, len(edges))
	for _, e := range edges {
		if related[e.From] && related[e.To] {
			children[e.From] = append(children[e.From], e.To)
		}
		reversed = append(reversed, graph.Edge{From: e.To, To: e.From})
	}
	for _, ids := range children {
		sort.Strings(ids)
	}

	visited := map[string]bool{}
	rootNode, err := s.expand(ctx, root, children, visited)
	if err != nil {
		return nil, err
	}

	ancestorIDs := graph.ReachableFrom(reversed, rootID)
	ancestors := make([]Ref, 0, len(ancestorIDs))
	for id := range ancestorIDs {
		anc, err := s.projects.Get(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("loading ancestor project: %w", err)
		}
		ancestors = append(ancestors, RefOf(anc))
	}
	sort.Slice(ancestors, func(i, j int) bool { return ancestors[i].Code < ancestors[j].Code })

	return &View{Root: *rootNode, Ancestors: ancestors}, nil
}

func (s *Service) expand(ctx context.Context, proj *Project, children map[string][]string, visited map[string]bool) (*Node, error) {
	if visited[proj.ID] {
		return &Node{Ref: RefOf(proj)}, nil
	}
	visited[proj.ID] = true

	tasks, err := s.projectTasks(ctx, proj.ID)
	if err != nil {
		return nil, err
	}

	node := &Node{
		Ref:      RefOf(proj),
		Expanded: true,
		Project:  proj,
		Tasks:    tasks,
	}

	for _, childID := range children[proj.ID] {
		child, err := s.projects.Get(ctx, childID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("loading child project: %w", err)
		}
		childNode, err := s.expand(ctx, child, children, visited)
		if err != nil {
			return nil, err
		}
		node.Children = append(node.Children, *childNode)
	}
	return node, nil
}

// projectTasks nests a project's tasks two levels deep: top-level tasks with
// their direct subtasks. A task whose parent is missing from the live set is
// promoted to top level rather than dropped.
func (s *Service) projectTasks(ctx context.Context, projectID string) ([]TaskNode, error) {
	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading project tasks: %w", err)
	}
	if len(tasks) == 0 {
		return nil, nil
	}

	byID := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = true
	}

	subtasks := map[string][]task.Task{}
	var tops []task.Task
	for _, t := range tasks {
		if t.ParentTaskID != nil && byID[*t.ParentTaskID] {
			subtasks[*t.ParentTaskID] = append(subtasks[*t.ParentTaskID], t)
			continue
		}
		tops = append(tops, t)
	}
	sort.Slice(tops, func(i, j int) bool { return tops[i].Code < tops[j].Code })

	nodes := make([]TaskNode, 0, len(tops))
	for _, top := range tops {
		subs := subtasks[top.ID]
		sort.Slice(subs, func(i, j int) bool { return subs[i].Code < subs[j].Code })
		nodes = append(nodes, TaskNode{Task: top, Subtasks: subs})
	}
	return nodes, nil
}
