package mcpserver

// OrgFormatContract describes the canonical task and journal entry formats
// that LLM consumers should follow when creating or updating entries.
const OrgFormatContract = `# Org File Format Contract

## Task format

Every task lives under a level-1 section heading and MUST follow this
structure:

` + "```" + `org
** TODO GH-28 Fix the flaky parser test
:PROPERTIES:
:ID: 0B9F2A41-8C3D-4E1F-9A6B-2D7C5E8F1A30
:CUSTOM_ID: task-gh-28
:CREATED: <2025-01-15 Wed 09:30>
:MODIFIED: [2025-01-20 Mon 14:05]
:END:
Free-form description lines.

*** Steps [1/2]
- [X] Reproduce locally
- [ ] Fix the race
` + "```" + `

## Rules

1. **Status keyword** is TODO or DONE, immediately after the ` + "`" + `**` + "`" + ` stars.
2. **The properties drawer is optional on input.** Missing :ID:,
   :CUSTOM_ID:, :CREATED:, and :MODIFIED: values are generated; supply
   :CUSTOM_ID: only when you want a specific slug.
3. **Ticket tokens** look like GH-28 (uppercase letters, dash, digits) and
   lead the headline when present.
4. **DONE tasks** carry a :CLOSED: timestamp and live in the completed
   section; this is handled automatically on status transitions.
5. **Checkbox lines** use ` + "`" + `- [ ]` + "`" + ` or ` + "`" + `- [X]` + "`" + `; the ` + "`" + `[n/m]` + "`" + ` cookies on
   headings are recomputed, never hand-edited.

## Journal entry format

Day files hold one date each:

` + "```" + `org
* 2025-01-20

** 09:15 GH-28 [[https://example.com/pr/28][#28]] Reviewed the fix :review:
- left two comments
** 14:30 Sync with the platform team :meeting:
` + "```" + `

1. **Time** is 24-hour HH:MM and entries stay sorted by it.
2. **Optional parts in order:** ticket token, [[url][text]] link, headline,
   trailing :tag1:tag2: set.
3. **Detail lines** follow the heading without a leading star.
`
