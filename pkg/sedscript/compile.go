package sedscript

// resolveProgram runs the post-compilation pass described in spec.md
// §4.3 "Label resolution": compute each command's linear Next pointer,
// and resolve every b/t/T TargetLabel against the label table. An
// unresolved label is a compile-time error (LabelNotFound), never a
// runtime one.
//
// CodeGroupTest's Target is already a direct command pointer set at
// parse time (the matching '}' noop), so it needs no resolution here.
func resolveProgram(prog *Program) error {
	n := len(prog.Commands)
	for i, cmd := range prog.Commands {
		if i+1 < n {
			cmd.Next = prog.Commands[i+1]
		} else {
			cmd.Next = nil // end of program == the "over" sentinel
		}

		switch cmd.RawCode {
		case 'b', 't', 'T':
			if cmd.TargetLabel == "" {
				cmd.Target = nil // empty label means "branch to end of script"
				continue
			}
			target, ok := prog.Labels[cmd.TargetLabel]
			if !ok {
				return newErr(cmd.Loc, ErrLabelNotFound, "label %q not found", cmd.TargetLabel)
			}
			cmd.Target = target
		}
	}
	return nil
}
