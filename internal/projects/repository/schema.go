package repository

// PostgresSchema creates the projects table used by PostgresStore and by the
// hosted REST interface.
const PostgresSchema = `
create extension if not exists pgcrypto;

create table if not exists projects (
  id              uuid primary key default gen_random_uuid(),
  name            text not null,
  description     text,
  status          text not null default 'active',
  repository_link text,
  local_path      text,
  personal_notes  text,
  attachment_url  text,
  created_at      timestamptz not null default now()
);

create index if not exists projects_created_at_idx on projects (created_at desc);
`
