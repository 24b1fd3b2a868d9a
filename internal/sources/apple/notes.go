package apple

import (
	"context"
	"fmt"
	"time"

	"github.com/berrypatch/member-berries/internal/sources"
)

type Notes struct {
	runner Runner
}

func NewNotes(runner Runner) *Notes {
	return &Notes{runner: runner}
}

type rawNote struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	Folder    string `json:"folder"`
	CreatedAt string `json:"createdAt"`
}

func (n *Notes) FindNotes(ctx context.Context, text string) ([]sources.Note, error) {
	all, err := n.ListNotes(ctx, "")
	if err != nil {
		return nil, err
	}

	var matched []sources.Note
	for _, note := range all {
		if containsFold(note.Name, text) || containsFold(note.Content, text) {
			matched = append(matched, note)
		}
	}
	return matched, nil
}

func (n *Notes) ListNotes(ctx context.Context, folderGlob string) ([]sources.Note, error) {
	script := `(() => {
		const app = Application("Notes");
		const out = [];
		const folders = app.folders();
		for (let i = 0; i < folders.length; i++) {
			const folder = folders[i];
			const folderName = folder.name();
			const notes = folder.notes();
			for (let j = 0; j < notes.length; j++) {
				const note = notes[j];
				out.push({
					id: note.id(),
					name: note.name(),
					content: note.plaintext(),
					folder: folderName,
					createdAt: note.creationDate().toISOString()
				});
			}
		}
		return JSON.stringify(out);
	})()`

	var raw []rawNote
	if err := runJSON(ctx, n.runner, script, &raw); err != nil {
		return nil, fmt.Errorf("fetch notes: %w", err)
	}

	notes := make([]sources.Note, 0, len(raw))
	for _, r := range raw {
		created, _ := time.Parse(time.RFC3339, r.CreatedAt)
		note := sources.Note{
			ID:        r.ID,
			Name:      r.Name,
			Content:   r.Content,
			Folder:    r.Folder,
			CreatedAt: created,
		}
		if folderGlob != "" && !matchFolder(folderGlob, note.Folder) {
			continue
		}
		notes = append(notes, note)
	}
	return notes, nil
}

func (n *Notes) CreateNote(ctx context.Context, title, body, folder string) (sources.Note, error) {
	script := fmt.Sprintf(`(() => {
		const app = Application("Notes");
		const folderName = %s;
		let target = null;
		const folders = app.folders.whose({name: {_equals: folderName}})();
		if (folders.length > 0) {
			target = folders[0];
		} else {
			target = app.Folder({name: folderName});
			app.folders.push(target);
		}
		const note = app.Note({name: %s, body: %s});
		target.notes.push(note);
		return JSON.stringify({id: note.id(), folder: folderName});
	})()`, jsString(folder), jsString(title), jsString(body))

	var result struct {
		ID     string `json:"id"`
		Folder string `json:"folder"`
	}
	if err := runJSON(ctx, n.runner, script, &result); err != nil {
		return sources.Note{}, fmt.Errorf("create note: %w", err)
	}
	return sources.Note{
		ID:        result.ID,
		Name:      title,
		Content:   body,
		Folder:    result.Folder,
		CreatedAt: time.Now(),
	}, nil
}
