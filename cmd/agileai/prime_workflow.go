// Package main provides the entry point for the agileai CLI.
package main

// defaultWorkflowContent is the default workflow instructions for agent onboarding.
// This can be overridden by placing a PRIME.md file in .agileai/.
const defaultWorkflowContent = `# Session Protocol
- [ ] agileai state show runtime (pick up where the last session left off)
- [ ] Work the current task; keep runtime state current as you go
- [ ] agileai improve add "..." (capture follow-ups the moment you spot them)
- [ ] agileai state set runtime '{"current_task": ...}' before session end

# Keeping State Current (MANDATORY)
Runtime state is the handoff between sessions. Update it whenever the
task changes, a decision is made, or you are about to stop:
  agileai state set runtime '{"current_task":"...", "next_step":"..."}'
Long-lived knowledge goes in persistent state, not runtime:
  agileai state set persistent '{"decisions":{"storage":"file-backed JSON"}}'

# Capturing Improvements
Record follow-ups as you notice them instead of fixing everything inline:
  agileai improve add "Extract retry helper from uploader" --priority medium

BAD (too vague to act on later):
  agileai improve add "clean up code"

GOOD (scoped, actionable):
  agileai improve add "uploader retries lack backoff, add jitter" --priority high

Ask yourself: could someone pick this up cold in a week?

# Choosing a Persona
Pick the persona that matches the work before starting:
- ` + "`agileai agents list`" + ` - See available personas
- ` + "`agileai agents show <name>`" + ` - Read the full prompt

# Essential Commands
### State
- ` + "`agileai state show runtime`" + ` - Current working state
- ` + "`agileai state set runtime '{...}'`" + ` - Merge updates (null deletes a key)

### Improvements
- ` + "`agileai improve list --status open`" + ` - Open backlog
- ` + "`agileai improve done <id>`" + ` - Close an item you finished

### Workspace
- ` + "`agileai doctor`" + ` - Check workspace health
- ` + "`agileai dashboard`" + ` - Local API with live hook/state events
`
