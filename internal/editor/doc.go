// Package editor binds a cell table to one host viewport.
//
// Each open grid surface owns a State: the surface handle, its table, the
// clipboard register, the block selection and the edit session. A
// Controller exposes the operations host bindings call (render, get and set
// cells, yank and paste, range clear, begin and commit edits). Render is the
// only operation that draws.
//
// A Controller is not safe for concurrent use. Hosts run one Actor per
// surface and send every operation through Actor.Do, so exactly one command
// touches a State at a time:
//
//	actor := editor.NewActor(editor.NewController(state), 0)
//	go actor.Run(ctx)
//	defer actor.Close()
//
//	err := actor.Do(ctx, func(c *editor.Controller) error {
//	    return c.BeginEdit(grid.Pos(0, 0))
//	})
//
// Edit session states:
//
//	Normal --BeginEdit--> Editing --Commit/Cancel--> Normal
//	Normal --BeginSelect--> Selecting --Update--> Selecting --EndSelect--> Normal
package editor
