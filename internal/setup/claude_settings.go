package setup

import (
	"encoding/json"
	"os"
	"strings"
)

// hookEntry is one command entry inside a Claude settings hook group.
type hookEntry struct {
	Type    string
	Command string
}

// hookGroup is one matcher group inside a Claude settings hooks event.
type hookGroup struct {
	Matcher string
	Hooks   []hookEntry
}

// SettingsDeclaresPrime reports whether a Claude settings.json file
// declares a hook that runs agileai prime. Some users wire the session
// hook through settings.json instead of the hook script; doctor checks
// both places.
func SettingsDeclaresPrime(settingsPath string) bool {
	data, err := os.ReadFile(settingsPath)
	if err != nil {
		return false
	}
	var settings map[string]any
	if err := json.Unmarshal(data, &settings); err != nil {
		return false
	}

	for _, event := range []string{"SessionStart", "UserPromptSubmit"} {
		for _, group := range getEventGroups(settings, event) {
			for _, entry := range group.Hooks {
				if strings.Contains(entry.Command, "agileai prime") {
					return true
				}
			}
		}
	}
	return false
}

// getEventGroups parses hook groups from settings for a specific event.
func getEventGroups(settings map[string]any, event string) []hookGroup {
	hooks, ok := settings["hooks"].(map[string]any)
	if !ok {
		return nil
	}

	groups, ok := hooks[event].([]any)
	if !ok {
		return nil
	}

	var result []hookGroup
	for _, rawGroup := range groups {
		if parsed, ok := parseHookGroup(rawGroup); ok {
			result = append(result, parsed)
		}
	}
	return result
}

// parseHookGroup converts a raw JSON group into a typed hookGroup.
func parseHookGroup(rawGroup any) (hookGroup, bool) {
	group, ok := rawGroup.(map[string]any)
	if !ok {
		return hookGroup{}, false
	}

	parsed := hookGroup{}
	if matcher, ok := group["matcher"].(string); ok {
		parsed.Matcher = matcher
	}

	rawHooks, _ := group["hooks"].([]any)
	for _, rawHook := range rawHooks {
		if entry, ok := parseHookEntry(rawHook); ok {
			parsed.Hooks = append(parsed.Hooks, entry)
		}
	}
	return parsed, true
}

// parseHookEntry converts a raw JSON hook into a typed hookEntry.
func parseHookEntry(rawHook any) (hookEntry, bool) {
	hook, ok := rawHook.(map[string]any)
	if !ok {
		return hookEntry{}, false
	}
	entry := hookEntry{}
	if hookType, ok := hook["type"].(string); ok {
		entry.Type = hookType
	}
	if command, ok := hook["command"].(string); ok {
		entry.Command = command
	}
	return entry, true
}
