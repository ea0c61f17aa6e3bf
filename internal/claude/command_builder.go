package claude

// BuildArgs はエージェントプロセス起動用のコマンドライン引数を構築する
func BuildArgs(opts StartOptions) []string {
	args := []string{
		"--print",
		"--input-format", "stream-json",
		"--output-format", "stream-json",
		"--verbose",
	}

	if opts.SessionID != "" {
		args = append(args, "--session-id", opts.SessionID)
	}

	if opts.PermissionMode != "" {
		args = append(args, "--permission-mode", opts.PermissionMode)
	}

	// セーフモードでは権限確認のバイパスを行わない
	if !opts.SafeMode {
		args = append(args, "--dangerously-skip-permissions")
	}

	return args
}
