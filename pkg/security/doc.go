/*
Package security groups the certificate and secret handling used by azrelay.

  - security/tls: upstream trust store (system roots plus an optional CA
    bundle), inbound TLS with fsnotify certificate reload, and a cron
    scheduled certificate expiry monitor.
  - security/secrets: ${secret:name} resolution for the upstream API key
    from mounted files or the environment.
*/
package security
