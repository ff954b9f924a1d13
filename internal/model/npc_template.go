package model

// NpcTemplate is the static NPC data quests key their hooks on.
type NpcTemplate struct {
	templateID int32
	name       string
	title      string
	level      int32
}

// NewNpcTemplate creates a new NPC template
func NewNpcTemplate(templateID int32, name, title string, level int32) *NpcTemplate {
	return &NpcTemplate{
		templateID: templateID,
		name:       name,
		title:      title,
		level:      level,
	}
}

// TemplateID returns template ID
func (t *NpcTemplate) TemplateID() int32 {
	return t.templateID
}

// Name returns NPC name
func (t *NpcTemplate) Name() string {
	return t.name
}

// Title returns NPC title
func (t *NpcTemplate) Title() string {
	return t.title
}

// Level returns NPC level
func (t *NpcTemplate) Level() int32 {
	return t.level
}

// Npc is a spawned NPC or monster instance.
type Npc struct {
	objectID uint32
	template *NpcTemplate
}

// NewNpc creates an NPC instance of the template.
func NewNpc(objectID uint32, template *NpcTemplate) *Npc {
	return &Npc{objectID: objectID, template: template}
}

// ObjectID returns the world object ID.
func (n *Npc) ObjectID() uint32 {
	return n.objectID
}

// TemplateID returns the template ID quests listen on.
func (n *Npc) TemplateID() int32 {
	return n.template.templateID
}

// Name returns the NPC name.
func (n *Npc) Name() string {
	return n.template.name
}

// Template returns the NPC template.
func (n *Npc) Template() *NpcTemplate {
	return n.template
}
