/*
Package secrets resolves ${secret:name} references in configuration.

The upstream API key can be written as a reference instead of a literal:

	upstream:
	  api_key: ${secret:azure-openai-api-key}

Providers are tried in order:

  - FileProvider reads security.secrets.file_dir/<name>, the layout used
    by Kubernetes and Docker secret mounts. The directory is watched with
    fsnotify; a change clears the provider's cache and runs the callback
    registered with Manager.OnChange.
  - EnvProvider reads security.secrets.env_prefix + NAME, with the name
    upper-cased and hyphens replaced by underscores. With no prefix,
    azure-openai-api-key is read from AZURE_OPENAI_API_KEY.

Usage:

	manager, err := secrets.NewManagerFromConfig(cfg.Security.Secrets)
	if err != nil {
		return err
	}
	defer manager.Close()

	if err := config.ResolveSecrets(ctx, cfg, manager); err != nil {
		return err
	}

A long-running process keeps the manager open and re-resolves the
reference from OnChange to follow a rotated key:

	manager.OnChange(func() {
		key, err := manager.ResolveReferences(ctx, ref)
		...
	})

Secret names are redacted in debug logs and values are never logged.
*/
package secrets
