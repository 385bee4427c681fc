// Package confloader loads configuration with koanf.
//
// Sources, from lowest to highest priority:
//
//  1. Defaults already present in the target struct
//  2. YAML configuration file
//  3. Environment variables (PAGEGATE_SECTION_KEY)
//  4. Overrides, usually mapped from command line flags
//
// Watcher follows the configuration file with fsnotify so selected
// settings can be applied without a restart.
package confloader
