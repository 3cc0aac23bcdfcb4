package user

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/basekit/basekit/pkg/store"
)

// maxThreadDepth bounds how far replies nest when building a CommentTree.
// Replies below the limit are attached to their closest kept ancestor's
// level rather than dropped.
const maxThreadDepth = 4

// Comment is a single comment on some parent entity. Comments for one parent
// live together in the parent-scoped sub-collection "<parent-id>_comments".
type Comment struct {
	ID     uuid.UUID `json:"id"`
	Parent uuid.UUID `json:"parent"`
	Owner  uuid.UUID `json:"owner"`

	// ReplyTo is nil for top-level comments.
	ReplyTo *uuid.UUID `json:"reply_to"`

	Content     string    `json:"content"`
	PublishedAt time.Time `json:"published_at"`
}

// CollectionName implements store.Record. Comments are always addressed
// through their parent-scoped sub-collection; this base name exists for
// sub-collection naming and discovery.
func (Comment) CollectionName() string { return "comments" }

// RecordID implements store.Record.
func (c Comment) RecordID() uuid.UUID { return c.ID }

// NewComment creates a comment by owner on parent. replyTo is nil for a
// top-level comment.
func NewComment(parent, owner uuid.UUID, replyTo *uuid.UUID, content string) Comment {
	return Comment{
		ID:          uuid.New(),
		Parent:      parent,
		Owner:       owner,
		ReplyTo:     replyTo,
		Content:     content,
		PublishedAt: time.Now().UTC(),
	}
}

// SaveComment persists the comment into its parent's sub-collection.
func SaveComment(ctx context.Context, s *store.Store, c Comment) error {
	return store.SetAt(ctx, s, store.SubCollectionFor[Comment](c.Parent), c)
}

// DeleteComment removes the comment from its parent's sub-collection.
// Replies to a deleted comment are kept; they surface as top-level comments
// in the rebuilt tree.
func DeleteComment(ctx context.Context, s *store.Store, c Comment) error {
	return store.RemoveAt(ctx, s, store.SubCollectionFor[Comment](c.Parent), c.ID)
}

// CommentsFor loads all comments under one parent entity.
func CommentsFor(ctx context.Context, s *store.Store, parent uuid.UUID) ([]Comment, error) {
	return store.CollectionAt[Comment](ctx, s, store.SubCollectionFor[Comment](parent))
}

// CommentCount reports the number of comments under one parent entity.
func CommentCount(ctx context.Context, s *store.Store, parent uuid.UUID) (int, error) {
	list, err := CommentsFor(ctx, s, parent)
	if err != nil {
		return 0, err
	}
	return len(list), nil
}

// CommentCountByAuthor reports how many comments the author has written
// across all parent entities, walking every comment sub-collection.
func CommentCountByAuthor(ctx context.Context, s *store.Store, author uuid.UUID) (int, error) {
	trees, err := store.TreesFor[Comment](ctx, s)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, tree := range trees {
		list, err := store.CollectionAt[Comment](ctx, s, tree)
		if err != nil {
			return 0, err
		}
		for _, c := range list {
			if c.Owner == author {
				count++
			}
		}
	}
	return count, nil
}

// CommentNode is a comment with its resolved author and nested replies.
type CommentNode struct {
	Comment Comment
	Author  User
	Replies []*CommentNode
}

// CommentTree loads the comments under parent and arranges them as a thread
// nested at most maxThreadDepth levels deep. Comments whose reply target is
// missing (deleted) are promoted to the top level; replies past the depth
// limit attach to the deepest kept ancestor. Authors are resolved from the
// user collection; a deleted author leaves the zero User on the node.
func CommentTree(ctx context.Context, s *store.Store, parent uuid.UUID) ([]*CommentNode, error) {
	comments, err := CommentsFor(ctx, s, parent)
	if err != nil {
		return nil, err
	}

	nodes := make(map[uuid.UUID]*CommentNode, len(comments))
	depth := make(map[uuid.UUID]int, len(comments))
	for _, c := range comments {
		n := &CommentNode{Comment: c}
		if author, err := store.Get[User](ctx, s, c.Owner); err == nil {
			n.Author = author
		}
		nodes[c.ID] = n
	}

	var roots []*CommentNode
	// anchor maps a comment to the node its replies attach to; past the
	// depth limit that is the deepest in-limit ancestor, not the comment
	// itself.
	anchor := make(map[uuid.UUID]*CommentNode, len(comments))
	attach := func(n *CommentNode) {
		id := n.Comment.ID
		parentNode := (*CommentNode)(nil)
		if n.Comment.ReplyTo != nil {
			parentNode = nodes[*n.Comment.ReplyTo]
		}
		if parentNode == nil {
			depth[id] = 1
			anchor[id] = n
			roots = append(roots, n)
			return
		}
		d := depth[parentNode.Comment.ID]
		if d >= maxThreadDepth {
			// Flatten: hang the reply off the deepest ancestor still
			// within the limit, as a sibling of its actual parent.
			target := anchor[parentNode.Comment.ID]
			depth[id] = d
			anchor[id] = target
			target.Replies = append(target.Replies, n)
			return
		}
		depth[id] = d + 1
		anchor[id] = n
		parentNode.Replies = append(parentNode.Replies, n)
	}

	// Attach level by level so a node's depth is known before its replies
	// are placed. Engine iteration order already puts parents before
	// replies in the common case, but deletion can break that, so iterate
	// to a fixed point.
	pending := make([]*CommentNode, 0, len(comments))
	for _, c := range comments {
		pending = append(pending, nodes[c.ID])
	}
	for len(pending) > 0 {
		next := pending[:0:0]
		progressed := false
		for _, n := range pending {
			if n.Comment.ReplyTo != nil {
				if target, ok := nodes[*n.Comment.ReplyTo]; ok {
					if _, placed := depth[target.Comment.ID]; !placed {
						next = append(next, n)
						continue
					}
				}
			}
			attach(n)
			progressed = true
		}
		if !progressed {
			// Reply cycles cannot be produced through NewComment, but
			// stored data is not trusted: promote the remainder.
			for _, n := range next {
				n.Comment.ReplyTo = nil
				attach(n)
			}
			break
		}
		pending = next
	}

	return roots, nil
}
