package types

// Editing helpers used by the CLI and HTTP API. Each mutates the receiver in place
// and reports whether an item with the given id was found.

// AddExperience appends a blank experience and returns its id
func (d *CVData) AddExperience() string {
	id := NewID()
	d.Experiences = append(d.Experiences, Experience{ID: id})
	return id
}

// UpdateExperience applies fn to the experience with the given id
func (d *CVData) UpdateExperience(id string, fn func(*Experience)) bool {
	return updateByID(d.Experiences, id, fn)
}

// RemoveExperience deletes the experience with the given id
func (d *CVData) RemoveExperience(id string) bool {
	var ok bool
	d.Experiences, ok = removeByID(d.Experiences, id)
	return ok
}

// AddEducation appends a blank education entry and returns its id
func (d *CVData) AddEducation() string {
	id := NewID()
	d.Education = append(d.Education, Education{ID: id})
	return id
}

// UpdateEducation applies fn to the education entry with the given id
func (d *CVData) UpdateEducation(id string, fn func(*Education)) bool {
	return updateByID(d.Education, id, fn)
}

// RemoveEducation deletes the education entry with the given id
func (d *CVData) RemoveEducation(id string) bool {
	var ok bool
	d.Education, ok = removeByID(d.Education, id)
	return ok
}

// AddSkill appends a skill at the default level and returns its id
func (d *CVData) AddSkill(name string) string {
	id := NewID()
	d.Skills = append(d.Skills, Skill{ID: id, Name: name, Level: DefaultSkillLevel})
	return id
}

// UpdateSkill applies fn to the skill with the given id
func (d *CVData) UpdateSkill(id string, fn func(*Skill)) bool {
	return updateByID(d.Skills, id, fn)
}

// RemoveSkill deletes the skill with the given id
func (d *CVData) RemoveSkill(id string) bool {
	var ok bool
	d.Skills, ok = removeByID(d.Skills, id)
	return ok
}

// AddLanguage appends a language at intermediate level and returns its id
func (d *CVData) AddLanguage(name string) string {
	id := NewID()
	d.Languages = append(d.Languages, Language{ID: id, Name: name, Level: LevelIntermediate})
	return id
}

// UpdateLanguage applies fn to the language with the given id
func (d *CVData) UpdateLanguage(id string, fn func(*Language)) bool {
	return updateByID(d.Languages, id, fn)
}

// RemoveLanguage deletes the language with the given id
func (d *CVData) RemoveLanguage(id string) bool {
	var ok bool
	d.Languages, ok = removeByID(d.Languages, id)
	return ok
}

func updateByID[T Identified](items []T, id string, fn func(*T)) bool {
	for i := range items {
		if items[i].ItemID() == id {
			fn(&items[i])
			return true
		}
	}
	return false
}

func removeByID[T Identified](items []T, id string) ([]T, bool) {
	for i := range items {
		if items[i].ItemID() == id {
			out := make([]T, 0, len(items)-1)
			out = append(out, items[:i]...)
			return append(out, items[i+1:]...), true
		}
	}
	return items, false
}
